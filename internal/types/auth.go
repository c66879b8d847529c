package types

import (
	"github.com/go-playground/validator/v10"
)

// LoginRequest is the recruiter sign-in form.
type LoginRequest struct {
	Username   string `json:"username" validate:"required,min=1"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me,omitempty"`
}

// Recruiter is the signed-in recruiter as reported by the backend.
type Recruiter struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

// LoginResponse is the backend's answer to a successful sign-in.
type LoginResponse struct {
	Token     string     `json:"token"`
	Recruiter *Recruiter `json:"recruiter,omitempty"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
