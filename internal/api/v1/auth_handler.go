package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"societyhub/internal/api/response"
	"societyhub/internal/model"
	"societyhub/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Email string  `json:"email" binding:"required"`
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Image *string `json:"image"`
}

// adminView strips the password hash from responses.
type adminView struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone string  `json:"phone"`
	Role  string  `json:"role"`
	Image *string `json:"image,omitempty"`
}

func viewOfAdmin(admin *model.Admin) adminView {
	return adminView{
		ID:    admin.ID.String(),
		Name:  admin.Name,
		Email: admin.Email,
		Phone: admin.Phone,
		Role:  string(admin.Role),
		Image: admin.Image,
	}
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func RegisterAuthRoutes(group *gin.RouterGroup, authService *service.AuthService) {
	if authService == nil {
		return
	}

	handler := NewAuthHandler(authService)
	auth := group.Group("/auth")

	auth.POST("/signup", handler.Signup)
	auth.POST("/login", handler.Login)
	auth.GET("/profile", handler.Profile)
	auth.PUT("/update", handler.UpdateProfile)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	admin, err := h.authService.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		handleAuthServiceError(c, err)
		return
	}

	response.Created(c, viewOfAdmin(admin))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthServiceError(c, err)
		return
	}

	body := gin.H{"admin": viewOfAdmin(result.Admin)}
	if result.AccessToken != "" {
		body["accessToken"] = result.AccessToken
	}
	response.OK(c, body)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		response.Fail(c, http.StatusBadRequest, "email is required")
		return
	}

	admin, err := h.authService.Profile(c.Request.Context(), email)
	if err != nil {
		handleAuthServiceError(c, err)
		return
	}

	response.OK(c, viewOfAdmin(admin))
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "email is required")
		return
	}

	admin, err := h.authService.UpdateProfile(c.Request.Context(), req.Email, req.Name, req.Phone, req.Image)
	if err != nil {
		handleAuthServiceError(c, err)
		return
	}

	response.OK(c, viewOfAdmin(admin))
}

func handleAuthServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingAuthFields):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAdminExists):
		response.Fail(c, http.StatusBadRequest, "admin already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusBadRequest, "invalid email or password")
	case errors.Is(err, service.ErrAdminNotFound):
		response.Fail(c, http.StatusNotFound, "admin not found")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
