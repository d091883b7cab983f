package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"travel-backend/middleware"
	"travel-backend/models"
	"travel-backend/services"

	"github.com/gin-gonic/gin"
)

type registerPayload struct {
	Username  string `json:"username" binding:"required,notblank"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type emailPayload struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyPayload struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type resetPayload struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// tokenPayload takes either username or email.
type tokenPayload struct {
	Username string `json:"username" binding:"required_without=Email"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type refreshPayload struct {
	Refresh string `json:"refresh"`
}

type userResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsActive   bool      `json:"is_active"`
	DateJoined time.Time `json:"date_joined"`
}

type AuthController struct {
	Accounts *services.AccountService
	Tokens   *services.TokenService
}

func NewAuthController(accounts *services.AccountService, tokens *services.TokenService) *AuthController {
	return &AuthController{Accounts: accounts, Tokens: tokens}
}

// Register creates an inactive account and emails the verification code.
func (ac *AuthController) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}

	user, err := ac.Accounts.Register(c.Request.Context(), services.RegisterInput{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    toUserResponse(user),
		"message": "Registration successful. Check your email for the verification code.",
	})
}

func (ac *AuthController) RequestOTP(c *gin.Context) {
	var payload emailPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	if err := ac.Accounts.RequestRegistrationOTP(c.Request.Context(), payload.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var payload verifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	if _, err := ac.Accounts.VerifyRegistration(c.Request.Context(), payload.Email, payload.OTP); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

func (ac *AuthController) RequestPasswordReset(c *gin.Context) {
	var payload emailPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	if err := ac.Accounts.RequestPasswordReset(c.Request.Context(), payload.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset OTP sent successfully"})
}

func (ac *AuthController) VerifyPasswordReset(c *gin.Context) {
	var payload resetPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	if err := ac.Accounts.ResetPassword(c.Request.Context(), payload.Email, payload.OTP, payload.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// ObtainToken accepts either username or email with the password.
func (ac *AuthController) ObtainToken(c *gin.Context) {
	var payload tokenPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	identifier := payload.Username
	if identifier == "" {
		identifier = payload.Email
	}
	pair, err := ac.Tokens.Login(c.Request.Context(), identifier, payload.Password)
	if err != nil {
		respondDetail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var payload refreshPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	access, err := ac.Tokens.Refresh(c.Request.Context(), payload.Refresh)
	if err != nil {
		respondDetail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (ac *AuthController) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondDetail(c, services.ErrTokenInvalid)
		return
	}
	var payload refreshPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondBadPayload(c, err)
		return
	}
	if err := ac.Tokens.Logout(c.Request.Context(), user.ID, payload.Refresh); err != nil {
		respondDetail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"detail":  "Successfully logged out",
		"code":    "logout_success",
		"user_id": user.ID,
	})
}

func (ac *AuthController) UserDetails(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondDetail(c, services.ErrTokenInvalid)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
	}
}
