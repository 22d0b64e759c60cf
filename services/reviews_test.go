package services

import (
	"sync"

	"food-ordering-api/apperrors"
	"food-ordering-api/models"
)

func (s *ServicesTestSuite) TestAddReview_RunningMean() {
	_, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)

	for _, rating := range []int{5, 3, 4} {
		_, err := s.reviews.AddReview(s.ctx, customer, r.ID, rating, "ok")
		s.Require().NoError(err)
	}

	got, err := s.restaurants.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.InDelta(4.0, got.Rating, 1e-9)
	s.Equal(3, got.TotalRatings)

	reviews, err := s.restaurants.ListReviews(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Len(reviews, 3)
}

func (s *ServicesTestSuite) TestAddReview_ConcurrentSubmissionsAreNotLost() {
	_, r := s.ownerWithRestaurant()

	const perRating = 6
	var (
		wg   sync.WaitGroup
		sum  int
		errs = make(chan error, 5*perRating)
	)
	for rating := 1; rating <= 5; rating++ {
		for i := 0; i < perRating; i++ {
			sum += rating
			customer := s.principal(models.RoleCustomer, false)
			wg.Add(1)
			go func(rating int) {
				defer wg.Done()
				_, err := s.reviews.AddReview(s.ctx, customer, r.ID, rating, "")
				errs <- err
			}(rating)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	got, err := s.restaurants.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	n := 5 * perRating
	s.Equal(n, got.TotalRatings)
	s.InDelta(float64(sum)/float64(n), got.Rating, 1e-9)
}

func (s *ServicesTestSuite) TestAddReview_Rejections() {
	owner, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)

	_, err := s.reviews.AddReview(s.ctx, customer, r.ID, 0, "")
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.reviews.AddReview(s.ctx, customer, r.ID, 6, "")
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.reviews.AddReview(s.ctx, owner, r.ID, 5, "")
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.reviews.AddReview(s.ctx, customer, "missing", 5, "")
	s.ErrorIs(err, apperrors.ErrNotFound)

	got, err := s.restaurants.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Zero(got.TotalRatings)

	_, err = s.restaurants.ListReviews(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}
