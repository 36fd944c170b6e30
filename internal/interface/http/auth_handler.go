package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-management-api/internal/application"
	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/interface/middleware"
	"github.com/oksasatya/user-management-api/pkg/helpers"
	"github.com/oksasatya/user-management-api/pkg/response"
)

type AuthHandler struct {
	Svc     *application.Service
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, cookies *helpers.Manager) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies}
}

type registerRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,digits"`
	Address     string `json:"address" binding:"omitempty,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusCreated, res.User.View(), "User registered successfully", gin.H{"expiresAt": res.ExpiresAt})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, res.User.View(), "Login successful", gin.H{"expiresAt": res.ExpiresAt})
}

// Logout clears the token cookie whether or not the caller is authenticated.
func (h *AuthHandler) Logout(c *gin.Context) {
	var actor *entity.Identity
	if id, ok := middleware.IdentityFrom(c); ok {
		actor = &id
	}
	h.Svc.Logout(c.Request.Context(), actor)
	h.Cookies.Clear(c)
	response.Message(c, http.StatusOK, "Logged out successfully")
}
