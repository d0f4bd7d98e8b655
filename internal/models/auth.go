package models

import "time"

// SignUpRequest defines the structure for sign-up requests
type SignUpRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FullName        string `json:"full_name" binding:"required"`
}

// SignInRequest defines the structure for sign-in requests
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ConfirmEmailRequest carries the token sent to the user at sign-up
type ConfirmEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// Session is returned on successful sign-in
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// CurrentUser is the signed-in user together with their profile
type CurrentUser struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
}
