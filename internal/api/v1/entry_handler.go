package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"societyhub/internal/api/middleware"
	"societyhub/internal/api/response"
	"societyhub/internal/service"
	"societyhub/internal/tenant"
)

type EntryHandler struct {
	entryService *service.EntryService
	scopes       *tenant.Resolver
}

func NewEntryHandler(entryService *service.EntryService, scopes *tenant.Resolver) *EntryHandler {
	return &EntryHandler{entryService: entryService, scopes: scopes}
}

func RegisterEntryRoutes(group *gin.RouterGroup, entryService *service.EntryService, scopes *tenant.Resolver) {
	if entryService == nil {
		return
	}

	handler := NewEntryHandler(entryService, scopes)
	entries := group.Group("/entries")
	entries.Use(middleware.JWTAuth())

	entries.GET("", handler.List)
	entries.GET("/count", handler.Count)
	entries.GET("/expiring-soon", handler.ExpiringSoon)
	entries.POST("", handler.Create)
	entries.PUT("/:id", handler.Update)
	entries.DELETE("/:id", handler.Delete)
}

func (h *EntryHandler) Create(c *gin.Context) {
	var in service.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.entryService.Create(c.Request.Context(), in)
	if err != nil {
		handleEntryServiceError(c, err)
		return
	}
	response.Created(c, entry)
}

// List filters by name, flat number and date substring. The scope is
// optional here so the gate tablet can query without an admin email.
func (h *EntryHandler) List(c *gin.Context) {
	scope, err := optionalScope(c, h.scopes)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "could not resolve caller")
		return
	}

	query := service.EntryListQuery{
		Name:       strings.TrimSpace(c.Query("name")),
		FlatNumber: strings.TrimSpace(c.Query("flatNumber")),
		Date:       strings.TrimSpace(c.Query("date")),
	}

	entries, err := h.entryService.List(c.Request.Context(), query, scope)
	if err != nil {
		handleEntryServiceError(c, err)
		return
	}
	response.OK(c, entries)
}

func (h *EntryHandler) Count(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	count, err := h.entryService.Count(c.Request.Context(), scope)
	if err != nil {
		handleEntryServiceError(c, err)
		return
	}
	response.Count(c, count)
}

func (h *EntryHandler) ExpiringSoon(c *gin.Context) {
	entries, err := h.entryService.ExpiringSoon(c.Request.Context())
	if err != nil {
		handleEntryServiceError(c, err)
		return
	}
	response.OK(c, entries)
}

func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in service.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.entryService.Update(c.Request.Context(), id, in)
	if err != nil {
		handleEntryServiceError(c, err)
		return
	}
	response.OK(c, entry)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), id); err != nil {
		handleEntryServiceError(c, err)
		return
	}
	response.Message(c, "entry permission deleted")
}

func handleEntryServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEntryInput),
		errors.Is(err, service.ErrInvalidDateTime):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEntryNotFound):
		response.Fail(c, http.StatusNotFound, "entry permission not found")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
