package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/assignments/controller"
)

func SubmissionAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSubmissionController(db)

	admin.Post("/templates/:id/assign", ctrl.AssignTemplate)

	submissions := admin.Group("/submissions")
	submissions.Get("/", ctrl.ListSubmissions)
	submissions.Get("/:id", ctrl.GetSubmissionDetail)
	submissions.Post("/:id/unlock", ctrl.UnlockSubmission)
	submissions.Get("/:id/export.csv", ctrl.ExportSubmissionCSV)
	submissions.Get("/:id/export.xlsx", ctrl.ExportSubmissionXLSX)
}
