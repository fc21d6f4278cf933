package api

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/validation"
	"complaint-triage/internal/complaints"
	"complaint-triage/internal/models"
	"complaint-triage/internal/search"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

const (
	readyTimeout         = 5 * time.Second
	defaultFeedbackLimit = 50
)

var classifyBodySchema = validation.MustCompileSchema("classify-complaint", `{
	"type": "object",
	"properties": {
		"text": {"type": "string"}
	}
}`)

var feedbackBodySchema = validation.MustCompileSchema("feedback", `{
	"type": "object",
	"properties": {
		"complaint_id":       {"type": "integer", "minimum": 1},
		"complaint_text":     {"type": "string"},
		"predicted_category": {"type": "string"},
		"predicted_priority": {"type": "string"},
		"correct_category":   {"type": "string"},
		"correct_priority":   {"type": "string"}
	}
}`)

type classifyRequest struct {
	Text string `json:"text"`
}

// bodyError describes the first schema violation in caller terms.
func bodyError(result *validation.ValidationResult, newErr func(string) *errors.StandardError) error {
	first := result.Errors[0]
	if first.Field == "" || first.Field == "(root)" {
		return newErr("Request body must be a JSON object.")
	}
	return newErr(fmt.Sprintf("Invalid field: %s", first.Field))
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	checks := make(map[string]string, len(s.checks))
	healthy := true
	for name, checker := range s.checks {
		if err := checker.Ping(ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			healthy = false
			continue
		}
		checks[name] = "healthy"
	}

	status, code := "ready", fiber.StatusOK
	if !healthy {
		status, code = "not ready", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "checks": checks})
}

func (s *Server) classifyComplaint(c *fiber.Ctx) error {
	body := c.Body()
	if result := classifyBodySchema.ValidateDocument(body); !result.Valid {
		return bodyError(result, errors.NewComplaintValidationError)
	}

	var req classifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errors.NewComplaintValidationError("Request body must be a JSON object.")
	}

	result, err := s.service.Classify(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) submitFeedback(c *fiber.Ctx) error {
	body := c.Body()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return errors.NewFeedbackValidationError("Request body must be a JSON object.")
	}
	for _, name := range complaints.RequiredFeedbackFields {
		if _, ok := fields[name]; !ok {
			return errors.NewFeedbackValidationError(complaints.MissingFieldMessage(name))
		}
	}

	if result := feedbackBodySchema.ValidateDocument(body); !result.Valid {
		return bodyError(result, errors.NewFeedbackValidationError)
	}

	var in complaints.FeedbackInput
	if err := json.Unmarshal(body, &in); err != nil {
		return errors.NewFeedbackValidationError("Request body must be a JSON object.")
	}

	result, err := s.service.SubmitFeedback(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) listComplaints(c *fiber.Ctx) error {
	records, err := s.service.ListComplaints(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"complaints": records, "count": len(records)})
}

func (s *Server) searchComplaints(c *fiber.Ctx) error {
	result, err := s.service.Search(c.UserContext(), search.Query{
		Text:     c.Query("q"),
		Category: models.Category(c.Query("category")),
		Priority: models.Priority(c.Query("priority")),
		Size:     c.QueryInt("limit", 0),
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) stats(c *fiber.Ctx) error {
	stats, err := s.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (s *Server) listFeedback(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit <= 0 {
		limit = defaultFeedbackLimit
	}
	items, err := s.service.ListFeedback(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"feedback": items, "count": len(items)})
}

func (s *Server) exportFeedback(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if _, err := s.service.ExportCorrections(c.UserContext(), &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="corrections.csv"`)
	return c.Send(buf.Bytes())
}

func (s *Server) reloadModels(c *fiber.Ctx) error {
	if s.reloader == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "Model reload is not available")
	}
	if err := s.reloader.Reload(); err != nil {
		return errors.NewModelReloadFailedError(err)
	}
	s.logger.Info("Models reloaded via admin API", map[string]interface{}{
		"requestId": c.Locals(localRequestID),
	})
	return c.JSON(fiber.Map{"status": "reloaded"})
}
