package dto

import "district_platform/internals/features/users/user/model"

type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=64"`
	Password     string `json:"password" validate:"required,min=6"`
	Role         string `json:"role" validate:"omitempty,oneof=admin district"`
	DistrictName string `json:"district_name"`
}

type UserDTO struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Role         string  `json:"role"`
	DistrictName *string `json:"district_name"`
}

func ToUserDTO(m model.UserModel) UserDTO {
	return UserDTO{
		ID:           m.ID,
		Username:     m.Username,
		Role:         m.Role,
		DistrictName: m.DistrictName,
	}
}
