package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"societyhub/internal/api/middleware"
	"societyhub/internal/api/response"
	"societyhub/internal/service"
	"societyhub/internal/tenant"
)

// ResidentHandler serves /api/users. The console calls residents
// "users".
type ResidentHandler struct {
	residentService *service.ResidentService
	scopes          *tenant.Resolver
}

func NewResidentHandler(residentService *service.ResidentService, scopes *tenant.Resolver) *ResidentHandler {
	return &ResidentHandler{residentService: residentService, scopes: scopes}
}

func RegisterResidentRoutes(group *gin.RouterGroup, residentService *service.ResidentService, scopes *tenant.Resolver) {
	if residentService == nil {
		return
	}

	handler := NewResidentHandler(residentService, scopes)
	users := group.Group("/users")
	users.Use(middleware.JWTAuth())

	users.GET("", handler.List)
	users.GET("/count", handler.Count)
	users.POST("", handler.Create)
	users.PUT("/:id", handler.Update)
	users.DELETE("/:id", handler.Delete)
}

func (h *ResidentHandler) List(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	residents, err := h.residentService.List(c.Request.Context(), scope)
	if err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.OK(c, residents)
}

func (h *ResidentHandler) Count(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	count, err := h.residentService.Count(c.Request.Context(), scope)
	if err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.Count(c, count)
}

func (h *ResidentHandler) Create(c *gin.Context) {
	var in service.ResidentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	resident, err := h.residentService.Create(c.Request.Context(), in)
	if err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.Created(c, resident)
}

func (h *ResidentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in service.ResidentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	resident, err := h.residentService.Update(c.Request.Context(), id, in)
	if err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.OK(c, resident)
}

func (h *ResidentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.residentService.Delete(c.Request.Context(), id); err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.Message(c, "resident deleted")
}

func handleResidentServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidResidentInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrResidentNotFound):
		response.Fail(c, http.StatusNotFound, "resident not found")
	case errors.Is(err, service.ErrSocietyNotFound):
		response.Fail(c, http.StatusNotFound, "society not found")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
