package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-management-api/internal/application"
	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/interface/middleware"
	"github.com/oksasatya/user-management-api/pkg/apperror"
	"github.com/oksasatya/user-management-api/pkg/response"
)

// PictureField is the multipart field carrying a profile picture.
const PictureField = "profilePicture"

type UserHandler struct {
	Svc *application.Service
}

func NewUserHandler(svc *application.Service) *UserHandler {
	return &UserHandler{Svc: svc}
}

type createUserRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	Role        string `json:"role" binding:"omitempty,role"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,digits"`
	Address     string `json:"address" binding:"omitempty,max=255"`
}

type updateUserRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,pwd"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,digits"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	Role        *string `json:"role" binding:"omitempty,role"`
}

// actor returns the identity set by Authenticate; routes without it are misconfigured.
func actor(c *gin.Context) (entity.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.Authentication("Not authorized, no token"))
	}
	return id, ok
}

func (h *UserHandler) List(c *gin.Context) {
	q := application.ParseListQuery(
		c.Query("page"),
		c.Query("limit"),
		c.Query("sortBy"),
		c.Query("order"),
		c.Query("role"),
		c.Query("search"),
	)
	res, err := h.Svc.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, entity.Views(res.Users), "Users fetched successfully", response.PageMeta{
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
		TotalUsers: res.TotalUsers,
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u.View(), "User fetched successfully", nil)
}

func (h *UserHandler) Create(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), who, application.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, u.View(), "User created successfully", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), who, c.Param("id"), application.UpdateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Role:        req.Role,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u.View(), "User updated successfully", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), who, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "User deleted successfully")
}

// UpdateProfilePicture accepts a multipart upload. A missing or unreadable file
// is passed on as nil so access checks still decide the response first.
func (h *UserHandler) UpdateProfilePicture(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}

	var (
		file io.ReadSeeker
		size int64
	)
	fh, err := c.FormFile(PictureField)
	switch {
	case err == nil:
		f, openErr := fh.Open()
		if openErr != nil {
			_ = c.Error(apperror.Internal("Internal server error", openErr))
			return
		}
		defer func() { _ = f.Close() }()
		file, size = f, fh.Size
	case errors.Is(err, http.ErrMissingFile):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			size = tooLarge.Limit + 1
		}
	}

	u, err := h.Svc.UpdateProfilePicture(c.Request.Context(), who, c.Param("id"), file, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u.View(), "Profile picture updated", nil)
}
