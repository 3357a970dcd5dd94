package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/assignments/dto"
	"district_platform/internals/features/assignments/service"
	helper "district_platform/internals/helpers"
)

type SubmissionController struct {
	Service *service.AssignmentService
}

func NewSubmissionController(db *gorm.DB) *SubmissionController {
	return &SubmissionController{Service: service.NewAssignmentService(db)}
}

// POST /api/admin/templates/:id/assign
func (ctrl *SubmissionController) AssignTemplate(c *fiber.Ctx) error {
	templateID, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid template id.")
	}

	var body dto.AssignRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	if err := ctrl.Service.Assign(c.UserContext(), templateID, body.DistrictUserIDs); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Template assigned", nil)
}

// GET /api/admin/submissions
func (ctrl *SubmissionController) ListSubmissions(c *fiber.Ctx) error {
	rows, err := ctrl.Service.ListSubmissions(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", rows)
}

// GET /api/admin/submissions/:id
func (ctrl *SubmissionController) GetSubmissionDetail(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid submission id.")
	}

	detail, err := ctrl.Service.GetSubmissionDetail(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", detail)
}

// POST /api/admin/submissions/:id/unlock
func (ctrl *SubmissionController) UnlockSubmission(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid submission id.")
	}

	if err := ctrl.Service.Unlock(c.UserContext(), id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Submission unlocked", nil)
}

// GET /api/admin/submissions/:id/export.csv
func (ctrl *SubmissionController) ExportSubmissionCSV(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid submission id.")
	}

	detail, err := ctrl.Service.GetSubmissionDetail(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := service.SubmissionCSV(detail)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="submission_%d.csv"`, id))
	return c.Send(out)
}

// GET /api/admin/submissions/:id/export.xlsx
func (ctrl *SubmissionController) ExportSubmissionXLSX(c *fiber.Ctx) error {
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid submission id.")
	}

	detail, err := ctrl.Service.GetSubmissionDetail(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := service.SubmissionXLSX(detail)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="submission_%d.xlsx"`, id))
	return c.Send(out)
}
