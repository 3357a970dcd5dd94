package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"district_platform/internals/features/users/user/dto"
	"district_platform/internals/features/users/user/service"
	helper "district_platform/internals/helpers"
)

type UserController struct {
	Service *service.UserService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{Service: service.NewUserService(db)}
}

// GET /api/admin/users?role=district
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	rows, err := ctrl.Service.ListUsers(c.UserContext(), c.Query("role"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", rows)
}

// POST /api/admin/users
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	var body dto.CreateUserRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	id, err := ctrl.Service.CreateUser(c.UserContext(), body)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "User created", fiber.Map{"id": id})
}
