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

type BroadcastHandler struct {
	broadcastService *service.BroadcastService
	scopes           *tenant.Resolver
}

func NewBroadcastHandler(broadcastService *service.BroadcastService, scopes *tenant.Resolver) *BroadcastHandler {
	return &BroadcastHandler{broadcastService: broadcastService, scopes: scopes}
}

func RegisterBroadcastRoutes(group *gin.RouterGroup, broadcastService *service.BroadcastService, scopes *tenant.Resolver) {
	if broadcastService == nil {
		return
	}

	handler := NewBroadcastHandler(broadcastService, scopes)
	broadcast := group.Group("/broadcast")
	broadcast.Use(middleware.JWTAuth())

	broadcast.GET("", handler.List)
	broadcast.GET("/count", handler.Count)
	broadcast.POST("", handler.Create)
	broadcast.PUT("/:id", handler.Update)
	broadcast.DELETE("/:id", handler.Delete)
}

func (h *BroadcastHandler) List(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	messages, err := h.broadcastService.List(c.Request.Context(), scope)
	if err != nil {
		handleBroadcastServiceError(c, err)
		return
	}
	response.OK(c, messages)
}

func (h *BroadcastHandler) Count(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	count, err := h.broadcastService.Count(c.Request.Context(), scope)
	if err != nil {
		handleBroadcastServiceError(c, err)
		return
	}
	response.Count(c, count)
}

func (h *BroadcastHandler) Create(c *gin.Context) {
	var in service.BroadcastInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.broadcastService.Create(c.Request.Context(), in)
	if err != nil {
		handleBroadcastServiceError(c, err)
		return
	}
	response.Created(c, msg)
}

func (h *BroadcastHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in service.BroadcastInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.broadcastService.Update(c.Request.Context(), id, in)
	if err != nil {
		handleBroadcastServiceError(c, err)
		return
	}
	response.OK(c, msg)
}

func (h *BroadcastHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.broadcastService.Delete(c.Request.Context(), id); err != nil {
		handleBroadcastServiceError(c, err)
		return
	}
	response.Message(c, "broadcast message deleted")
}

func handleBroadcastServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidBroadcastInput),
		errors.Is(err, service.ErrBroadcastSocietyNeeded),
		errors.Is(err, service.ErrBroadcastTargetNeeded):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrBroadcastNotFound):
		response.Fail(c, http.StatusNotFound, "broadcast message not found")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
