package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PartialWriteHook is called for every partial write that reaches the HTTP boundary.
type PartialWriteHook func(*Error)

// ErrorMiddleware renders the last error attached with c.Error. Server-side
// failures are logged in full but answered with the generic message only.
func ErrorMiddleware(log *zap.Logger, onPartial PartialWriteHook) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		appErr := From(c.Errors.Last().Err)

		fields := []zap.Field{
			zap.String("kind", string(appErr.Kind)),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(appErr.Err),
		}
		for k, v := range appErr.Fields {
			fields = append(fields, zap.String(k, v))
		}

		switch {
		case errors.Is(appErr, ErrPartialWrite):
			log.Error("partial write, manual reconciliation required", fields...)
			if onPartial != nil {
				onPartial(appErr)
			}
		case appErr.Code >= 500:
			log.Error(appErr.Message, fields...)
		default:
			log.Debug(appErr.Message, fields...)
		}

		if c.Writer.Written() {
			return
		}
		msg := appErr.Message
		switch {
		case appErr.Kind == KindPartialWrite:
			// keeps its reconciliation message
		case appErr.Code == http.StatusServiceUnavailable:
			msg = "Service temporarily unavailable"
		case appErr.Code >= 500:
			msg = "Internal server error"
		}
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": msg})
	}
}
