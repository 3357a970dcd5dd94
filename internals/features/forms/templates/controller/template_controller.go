package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/forms/templates/dto"
	"district_platform/internals/features/forms/templates/service"
	helper "district_platform/internals/helpers"
	authMiddleware "district_platform/internals/middlewares/auth"
)

type TemplateController struct {
	Service *service.TemplateService
}

func NewTemplateController(db *gorm.DB) *TemplateController {
	return &TemplateController{Service: service.NewTemplateService(db)}
}

// GET /api/admin/templates
func (ctrl *TemplateController) ListTemplates(c *fiber.Ctx) error {
	rows, err := ctrl.Service.ListTemplates(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", rows)
}

// POST /api/admin/templates
func (ctrl *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var body dto.CreateTemplateRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	adminID, _ := authMiddleware.UserID(c)
	id, err := ctrl.Service.CreateTemplate(c.UserContext(), body.Name, adminID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Template created", fiber.Map{"id": id})
}

// GET /api/admin/templates/:id
func (ctrl *TemplateController) GetTemplateDetail(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid template id.")
	}

	detail, err := ctrl.Service.GetTemplateDetail(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", detail)
}

// PUT /api/admin/templates/:id
func (ctrl *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid template id.")
	}

	var body dto.UpdateTemplateRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	if err := ctrl.Service.UpdateTemplate(c.UserContext(), id, body.Name); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Template updated", nil)
}

// POST /api/admin/templates/:id/publish
func (ctrl *TemplateController) PublishTemplate(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid template id.")
	}

	if err := ctrl.Service.PublishTemplate(c.UserContext(), id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Template published", nil)
}

// DELETE /api/admin/templates/:id
func (ctrl *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid template id.")
	}

	if err := ctrl.Service.DeleteTemplateCascade(c.UserContext(), id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "Template deleted", nil)
}
