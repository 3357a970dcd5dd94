package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"district_platform/internals/allocator"
	"district_platform/internals/apperr"
	"district_platform/internals/constants"
	database "district_platform/internals/databases"
	"district_platform/internals/features/users/user/dto"
	"district_platform/internals/features/users/user/model"
)

type UserService struct {
	DB    *gorm.DB
	Alloc *allocator.Allocator
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db, Alloc: allocator.New(db)}
}

// CreateUser hashes the password and inserts the user under a freshly
// allocated id. Username uniqueness is enforced by the store's unique
// index, not a read-then-write check.
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (int64, error) {
	role := req.Role
	if role == "" {
		role = constants.RoleDistrict
	}
	if !constants.ValidRole(role) {
		return 0, apperr.Validation("Invalid role.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	id, err := s.Alloc.Next(ctx, allocator.EntityUsers)
	if err != nil {
		return 0, apperr.AllocatorFailure("could not allocate user id", err)
	}

	var districtName *string
	if req.DistrictName != "" {
		districtName = &req.DistrictName
	}

	u := model.UserModel{
		ID:           id,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		DistrictName: districtName,
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return 0, apperr.Validation("Username already exists.")
		}
		return 0, err
	}
	return id, nil
}

// GetUserByUsername returns the user row, or NotFound.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.UserModel, error) {
	var u model.UserModel
	err := s.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found.")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users, optionally filtered by role, newest first.
func (s *UserService) ListUsers(ctx context.Context, role string) ([]dto.UserDTO, error) {
	q := s.DB.WithContext(ctx).Model(&model.UserModel{})
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var users []model.UserModel
	if err := q.Order("id DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserDTO(u))
	}
	return out, nil
}
