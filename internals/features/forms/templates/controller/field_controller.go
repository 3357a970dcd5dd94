package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/forms/templates/dto"
	"district_platform/internals/features/forms/templates/service"
	helper "district_platform/internals/helpers"
)

type FieldController struct {
	Service *service.TemplateService
}

func NewFieldController(db *gorm.DB) *FieldController {
	return &FieldController{Service: service.NewTemplateService(db)}
}

// POST /api/admin/templates/:id/fields
func (ctrl *FieldController) AddField(c *fiber.Ctx) error {
	templateID, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid template id.")
	}

	var body dto.AddFieldRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	if err := ctrl.Service.AddField(c.UserContext(), templateID, body); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Field added", nil)
}

// PUT /api/admin/fields/:id
func (ctrl *FieldController) UpdateField(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid field id.")
	}

	var body dto.UpdateFieldRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := ctrl.Service.UpdateField(c.UserContext(), id, body); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Field updated", nil)
}

// DELETE /api/admin/fields/:id
func (ctrl *FieldController) DeleteField(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid field id.")
	}

	if err := ctrl.Service.DeleteField(c.UserContext(), id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "Field deleted", nil)
}
