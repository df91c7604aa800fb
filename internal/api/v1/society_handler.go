package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"societyhub/internal/api/middleware"
	"societyhub/internal/api/response"
	"societyhub/internal/model"
	"societyhub/internal/service"
	"societyhub/internal/tenant"
)

type SocietyHandler struct {
	societyService *service.SocietyService
	scopes         *tenant.Resolver
}

func NewSocietyHandler(societyService *service.SocietyService, scopes *tenant.Resolver) *SocietyHandler {
	return &SocietyHandler{societyService: societyService, scopes: scopes}
}

func RegisterSocietyRoutes(group *gin.RouterGroup, societyService *service.SocietyService, scopes *tenant.Resolver) {
	if societyService == nil {
		return
	}

	handler := NewSocietyHandler(societyService, scopes)
	societies := group.Group("/societies")
	societies.Use(middleware.JWTAuth())

	societies.GET("", handler.List)
	societies.GET("/count", handler.Count)
	societies.POST("", handler.Create)
	societies.PUT("/:id", handler.Update)
	// Deleting a society cascades its residents, events and coupons.
	societies.DELETE("/:id", middleware.RequireRole(string(model.AdminRoleSuperadmin)), handler.Delete)
}

func (h *SocietyHandler) List(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	societies, err := h.societyService.List(c.Request.Context(), scope)
	if err != nil {
		handleSocietyServiceError(c, err)
		return
	}
	response.OK(c, societies)
}

func (h *SocietyHandler) Count(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	count, err := h.societyService.Count(c.Request.Context(), scope)
	if err != nil {
		handleSocietyServiceError(c, err)
		return
	}
	response.Count(c, count)
}

func (h *SocietyHandler) Create(c *gin.Context) {
	var in service.SocietyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	society, err := h.societyService.Create(c.Request.Context(), in)
	if err != nil {
		handleSocietyServiceError(c, err)
		return
	}
	response.Created(c, society)
}

func (h *SocietyHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in service.SocietyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	society, err := h.societyService.Update(c.Request.Context(), id, in)
	if err != nil {
		handleSocietyServiceError(c, err)
		return
	}
	response.OK(c, society)
}

func (h *SocietyHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.societyService.Delete(c.Request.Context(), id); err != nil {
		handleSocietyServiceError(c, err)
		return
	}
	response.Message(c, "society deleted")
}

func handleSocietyServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSocietyInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSocietyNotFound):
		response.Fail(c, http.StatusNotFound, "society not found")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
