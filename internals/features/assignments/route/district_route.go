package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/assignments/controller"
)

func AssignmentDistrictRoutes(district fiber.Router, db *gorm.DB) {
	ctrl := controller.NewDistrictController(db)

	assignments := district.Group("/assignments")
	assignments.Get("/", ctrl.ListAssignments)
	assignments.Get("/:id", ctrl.GetAssignmentDetail)
	assignments.Put("/:id", ctrl.SaveValues)
	assignments.Post("/:id/send", ctrl.SendAssignment)
}
