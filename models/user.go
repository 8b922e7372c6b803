package models

import "time"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// AdminUser is a dashboard account. Only bcrypt hashes are stored.
type AdminUser struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash []byte     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

type LoginUser struct {
	Username  string     `json:"username"`
	LastLogin *time.Time `json:"last_login"`
}

type LoginResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token,omitempty"`
	Message string     `json:"message"`
	User    *LoginUser `json:"user,omitempty"`
}
