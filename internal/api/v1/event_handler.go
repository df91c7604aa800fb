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

type EventHandler struct {
	eventService *service.EventService
	scopes       *tenant.Resolver
}

func NewEventHandler(eventService *service.EventService, scopes *tenant.Resolver) *EventHandler {
	return &EventHandler{eventService: eventService, scopes: scopes}
}

func RegisterEventRoutes(group *gin.RouterGroup, eventService *service.EventService, scopes *tenant.Resolver) {
	if eventService == nil {
		return
	}

	handler := NewEventHandler(eventService, scopes)
	events := group.Group("/events")
	events.Use(middleware.JWTAuth())

	events.GET("", handler.List)
	events.GET("/count", handler.Count)
	events.POST("", handler.Create)
	events.PUT("/:id", handler.Update)
	events.DELETE("/:id", handler.Delete)
}

func (h *EventHandler) List(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	events, err := h.eventService.List(c.Request.Context(), scope)
	if err != nil {
		handleEventServiceError(c, err)
		return
	}
	response.OK(c, events)
}

func (h *EventHandler) Count(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	count, err := h.eventService.Count(c.Request.Context(), scope)
	if err != nil {
		handleEventServiceError(c, err)
		return
	}
	response.Count(c, count)
}

func (h *EventHandler) Create(c *gin.Context) {
	var in service.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), in)
	if err != nil {
		handleEventServiceError(c, err)
		return
	}
	response.Created(c, event)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in service.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, in)
	if err != nil {
		handleEventServiceError(c, err)
		return
	}
	response.OK(c, event)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), id); err != nil {
		handleEventServiceError(c, err)
		return
	}
	response.Message(c, "event deleted")
}

func handleEventServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEventInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEventNotFound):
		response.Fail(c, http.StatusNotFound, "event not found")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
