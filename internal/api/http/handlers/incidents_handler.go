package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/api/validation"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// IncidentsHandler exposes the incident endpoints.
type IncidentsHandler struct {
	incidents  *service.IncidentService
	assignment *service.AssignmentService
	validate   *validation.Validator
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidents *service.IncidentService, assignment *service.AssignmentService, validate *validation.Validator) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents, assignment: assignment, validate: validate}
}

// List handles GET /api/incidents.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	return h.respondList(c)(h.incidents.List(c.UserContext(), repository.IncidentFilter{}))
}

// Get handles GET /api/incidents/:id.
func (h *IncidentsHandler) Get(c *fiber.Ctx) error {
	incident, err := h.incidents.Get(c.UserContext(), param(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIncidentResponse(incident))
}

// Create handles POST /api/incidents.
func (h *IncidentsHandler) Create(c *fiber.Ctx) error {
	req, err := h.parseIncident(c)
	if err != nil {
		return err
	}
	incident, err := h.incidents.Create(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewIncidentResponse(incident))
}

// Update handles PUT /api/incidents/:id.
func (h *IncidentsHandler) Update(c *fiber.Ctx) error {
	req, err := h.parseIncident(c)
	if err != nil {
		return err
	}
	incident, err := h.incidents.Update(c.UserContext(), param(c, "id"), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIncidentResponse(incident))
}

// Delete handles DELETE /api/incidents/:id.
func (h *IncidentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.incidents.Delete(c.UserContext(), param(c, "id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ByStatus handles GET /api/incidents/status/:status.
func (h *IncidentsHandler) ByStatus(c *fiber.Ctx) error {
	return h.respondList(c)(h.incidents.ListByStatus(c.UserContext(), param(c, "status")))
}

// ByPriority handles GET /api/incidents/priority/:priority.
func (h *IncidentsHandler) ByPriority(c *fiber.Ctx) error {
	priority, err := strconv.Atoi(param(c, "priority"))
	if err != nil {
		return apperrors.NewValidationError("priority must be an integer", map[string]any{"priority": param(c, "priority")})
	}
	return h.respondList(c)(h.incidents.ListByPriority(c.UserContext(), priority))
}

// ByCategory handles GET /api/incidents/category/:category.
func (h *IncidentsHandler) ByCategory(c *fiber.Ctx) error {
	return h.respondList(c)(h.incidents.ListByCategory(c.UserContext(), param(c, "category")))
}

// ByTechnician handles GET /api/incidents/technician/:id.
func (h *IncidentsHandler) ByTechnician(c *fiber.Ctx) error {
	return h.respondList(c)(h.incidents.ListByTechnician(c.UserContext(), param(c, "id")))
}

// ByReporter handles GET /api/incidents/reporter/:id.
func (h *IncidentsHandler) ByReporter(c *fiber.Ctx) error {
	return h.respondList(c)(h.incidents.ListByReporter(c.UserContext(), param(c, "id")))
}

// BySpecialization handles POST /api/incidents/by-specialization.
func (h *IncidentsHandler) BySpecialization(c *fiber.Ctx) error {
	var req dto.SpecializationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.respondList(c)(h.incidents.ListBySpecializations(c.UserContext(), req.Specializations))
}

// TakeCharge handles PUT /api/incidents/:incidentId/take-charge?username=.
func (h *IncidentsHandler) TakeCharge(c *fiber.Ctx) error {
	username := query(c, "username")
	if username == "" {
		return apperrors.NewValidationError("username query parameter required", nil)
	}
	if err := h.assignment.TakeCharge(c.UserContext(), param(c, "incidentId"), username); err != nil {
		return err
	}
	return c.SendStatus(http.StatusOK)
}

func (h *IncidentsHandler) parseIncident(c *fiber.Ctx) (dto.IncidentRequest, error) {
	var req dto.IncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

func (h *IncidentsHandler) respondList(c *fiber.Ctx) func([]domain.Incident, error) error {
	return func(incidents []domain.Incident, err error) error {
		if err != nil {
			return err
		}
		return c.JSON(dto.NewIncidentResponses(incidents))
	}
}
