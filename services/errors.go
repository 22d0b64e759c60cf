package services

import (
	"errors"

	"food-ordering-api/apperrors"
	"food-ordering-api/repository"
)

// storeErr maps a repository error onto the application taxonomy
func storeErr(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if repository.IsNotFound(err) {
		return apperrors.NotFound(notFound)
	}
	if errors.Is(err, repository.ErrStaleWrite) {
		return apperrors.New(apperrors.KindConflict, "Resource changed concurrently, please retry", err)
	}
	if apperrors.IsTransient(err) {
		return apperrors.Unavailable("Store temporarily unavailable", err)
	}
	return apperrors.Dependency("Internal server error", err)
}
