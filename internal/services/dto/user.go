package dto

type CreateUserRequest struct {
	Name       string   `json:"name" validate:"required,min=2,max=120"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=8"`
	Role       string   `json:"role" validate:"omitempty,oneof=user admin"`
	Properties []string `json:"properties" validate:"omitempty,dive,min=1"`
}

type UpdateUserRequest struct {
	Name       *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	Password   *string  `json:"password" validate:"omitempty,min=8"`
	Role       *string  `json:"role" validate:"omitempty,oneof=user admin"`
	Properties []string `json:"properties" validate:"omitempty,dive,min=1"`
}
