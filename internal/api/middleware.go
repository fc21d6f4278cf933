package api

import (
	"crypto/subtle"
	"time"

	"complaint-triage/internal/common/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	headerRequestID  = "X-Request-ID"
	headerAdminToken = "X-Admin-Token"
	localRequestID   = "request_id"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Locals(localRequestID, id)
		c.Set(headerRequestID, id)
		return c.Next()
	}
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the error handler set the final status before logging.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		s.obs.RecordRequest(c.UserContext(), route, c.Method(), status, duration)

		fields := map[string]interface{}{
			"requestId":  c.Locals(localRequestID),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"durationMs": float64(duration.Microseconds()) / 1000.0,
		}
		switch {
		case status >= 500:
			s.logger.Error("Request failed", fields)
		case status >= 400:
			s.logger.Warn("Request rejected", fields)
		default:
			s.logger.Debug("Request completed", fields)
		}
		return nil
	}
}

// errorHandler turns StandardErrors into their HTTP status and public
// message. Details only go to the log.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if stdErr, ok := errors.As(err); ok {
		status := errors.HTTPStatus(stdErr.Code)
		if status >= 500 {
			s.logger.WithError(err).Error("Request error", map[string]interface{}{
				"requestId": c.Locals(localRequestID),
				"errorCode": string(stdErr.Code),
			})
		}
		return c.Status(status).JSON(ErrorResponse{Error: stdErr.Message})
	}

	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
	}

	s.logger.WithError(err).Error("Unhandled request error", map[string]interface{}{
		"requestId": c.Locals(localRequestID),
	})
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Internal server error"})
}

func requireJSON(c *fiber.Ctx) error {
	if !c.Is("json") {
		return fiber.NewError(fiber.StatusBadRequest, "Content-Type must be application/json")
	}
	return c.Next()
}

// requireAdmin guards admin routes. With no token configured they are closed.
func (s *Server) requireAdmin(c *fiber.Ctx) error {
	token := c.Get(headerAdminToken)
	if s.cfg.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
		return errors.NewAuthenticationError("invalid admin token")
	}
	return c.Next()
}
