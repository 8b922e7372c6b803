package models

import "time"

type ContactCreate struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Message       string `json:"message" binding:"required"`
	CaptchaAnswer string `json:"captcha_answer" binding:"required"`
}

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Read      bool      `json:"read"`
}

type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
