package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/service"
)

// TechniciansHandler exposes technician lookups.
type TechniciansHandler struct {
	technicians *service.TechnicianService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(technicians *service.TechnicianService) *TechniciansHandler {
	return &TechniciansHandler{technicians: technicians}
}

// Specializations handles GET /api/technicians/:username/specializations.
func (h *TechniciansHandler) Specializations(c *fiber.Ctx) error {
	specs, err := h.technicians.Specializations(c.UserContext(), param(c, "username"))
	if err != nil {
		return err
	}
	return c.JSON(dto.SpecializationWire(specs))
}
