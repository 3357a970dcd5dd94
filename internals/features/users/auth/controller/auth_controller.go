package controller

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"district_platform/internals/apperr"
	"district_platform/internals/configs"
	"district_platform/internals/features/users/user/service"
	helper "district_platform/internals/helpers"
	authMiddleware "district_platform/internals/middlewares/auth"
)

type AuthController struct {
	Users *service.UserService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{Users: service.NewUserService(db)}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Username and password required.")
	}
	if err := helper.ValidateStruct(body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Username and password required.")
	}

	user, err := ctrl.Users.GetUserByUsername(c.UserContext(), body.Username)
	if err != nil {
		if kind, ok := apperr.KindOf(err); ok && kind == apperr.KindNotFound {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid credentials.")
		}
		return helper.JsonFromError(c, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid credentials.")
	}

	districtName := ""
	if user.DistrictName != nil {
		districtName = *user.DistrictName
	}
	token, err := helper.SignUserToken(configs.JWTSecret, user.ID, user.Username, user.Role, districtName)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Could not issue token.")
	}

	return helper.JsonOK(c, "Logged in", fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":            user.ID,
			"username":      user.Username,
			"role":          user.Role,
			"district_name": user.DistrictName,
		},
	})
}

// GET /api/me
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	id, _ := authMiddleware.UserID(c)
	return helper.JsonOK(c, "", fiber.Map{
		"id":            id,
		"username":      c.Locals(authMiddleware.LocalUsername),
		"role":          c.Locals(authMiddleware.LocalUserRole),
		"district_name": c.Locals(authMiddleware.LocalDistrictName),
	})
}
