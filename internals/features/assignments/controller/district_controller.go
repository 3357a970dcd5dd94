package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/configs"
	"district_platform/internals/features/assignments/dto"
	"district_platform/internals/features/assignments/service"
	helper "district_platform/internals/helpers"
	"district_platform/internals/mailer"
	authMiddleware "district_platform/internals/middlewares/auth"
)

type DistrictController struct {
	Service *service.AssignmentService
}

func NewDistrictController(db *gorm.DB) *DistrictController {
	return &DistrictController{Service: service.NewAssignmentService(db)}
}

// GET /api/district/assignments
func (ctrl *DistrictController) ListAssignments(c *fiber.Ctx) error {
	userID, ok := authMiddleware.UserID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	rows, err := ctrl.Service.ListDistrictAssignments(c.UserContext(), userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", rows)
}

// GET /api/district/assignments/:id
func (ctrl *DistrictController) GetAssignmentDetail(c *fiber.Ctx) error {
	userID, ok := authMiddleware.UserID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id.")
	}

	detail, err := ctrl.Service.GetDistrictAssignmentDetail(c.UserContext(), id, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", detail)
}

// PUT /api/district/assignments/:id
func (ctrl *DistrictController) SaveValues(c *fiber.Ctx) error {
	userID, ok := authMiddleware.UserID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id.")
	}

	var body dto.SaveValuesRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := ctrl.Service.SaveValues(c.UserContext(), id, userID, body.Values); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Saved", nil)
}

// POST /api/district/assignments/:id/send
//
// The state flip is the transaction; the admin email is best-effort and only
// shades the success message.
func (ctrl *DistrictController) SendAssignment(c *fiber.Ctx) error {
	userID, ok := authMiddleware.UserID(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	id, ok := helper.ParamID(c, "id")
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id.")
	}

	result, err := ctrl.Service.Send(c.UserContext(), id, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	message := "Sent"
	if configs.AdminEmail != "" {
		rows := make([]mailer.Row, 0, len(result.Rows))
		for _, r := range result.Rows {
			rows = append(rows, mailer.Row{Label: r.Label, Value: r.Value})
		}
		html := mailer.BuildSubmissionHTML(
			result.DistrictName,
			result.TemplateName,
			result.SentAt.Format("2006-01-02 15:04:05"),
			rows,
		)
		res, mailErr := mailer.SendSubmissionEmail(mailer.Message{
			To:      configs.AdminEmail,
			Subject: "Submission: " + result.TemplateName + " - " + result.DistrictName,
			HTML:    html,
		})
		switch {
		case mailErr != nil:
			log.Printf("submission email failed: %v", mailErr)
			message = "Sent (email failed; check logs)"
		case res.OK:
			message = "Sent (email delivered)"
		}
	}

	return helper.JsonOK(c, message, fiber.Map{"sent_at": result.SentAt})
}
