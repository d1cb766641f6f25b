package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"energy-marketplace/internal/domain"
	"energy-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// errorLogSize bounds the Redis error log served by /health/errors.
const errorLogSize = 50

// StatusFor maps an error to its HTTP status and caller-facing message.
// Domain kinds become 422/404/409, *fiber.Error keeps its code, anything else is a 500.
func StatusFor(err error) (int, string) {
	var de *domain.Error
	if errors.As(err, &de) {
		switch {
		case errors.Is(de.Kind, domain.ErrValidation):
			return fiber.StatusUnprocessableEntity, de.Message
		case errors.Is(de.Kind, domain.ErrNotFound):
			return fiber.StatusNotFound, de.Message
		case errors.Is(de.Kind, domain.ErrConflict):
			return fiber.StatusConflict, de.Message
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, "Internal Server Error"
}

// NewErrorHandler is the global error handler. It renders the standard error format and,
// when rdb is set, appends server errors to the health error log.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := StatusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
			recordError(rdb, c, err)
		}
		return response.Error(c, message, code, nil)
	}
}

func recordError(rdb *redis.Client, c *fiber.Ctx, err error) {
	if rdb == nil {
		return
	}
	entry, _ := json.Marshal(map[string]interface{}{
		"time":     time.Now().UTC(),
		"method":   c.Method(),
		"path":     c.OriginalURL(),
		"message":  err.Error(),
		"trace_id": GetTraceID(c),
	})
	ctx := context.Background()
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, entry)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	_, _ = pipe.Exec(ctx)
}
