package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"societyhub/internal/api/middleware"
	"societyhub/internal/api/response"
	"societyhub/internal/model"
	"societyhub/internal/service"
	"societyhub/internal/tenant"
)

type FlatOwnerHandler struct {
	ownerService *service.FlatOwnerService
	scopes       *tenant.Resolver
}

func NewFlatOwnerHandler(ownerService *service.FlatOwnerService, scopes *tenant.Resolver) *FlatOwnerHandler {
	return &FlatOwnerHandler{ownerService: ownerService, scopes: scopes}
}

func RegisterFlatOwnerRoutes(group *gin.RouterGroup, ownerService *service.FlatOwnerService, scopes *tenant.Resolver) {
	if ownerService == nil {
		return
	}

	handler := NewFlatOwnerHandler(ownerService, scopes)
	flats := group.Group("/flats")
	flats.Use(middleware.JWTAuth())

	flats.GET("/count", handler.Count)
	flats.GET("/all", handler.ListAll)
	flats.GET("/societies", handler.Societies)
	flats.GET("/flats/:societyName", handler.FlatsOf)
	flats.GET("/owner/:societyName/:flatNumber", handler.Lookup)
	flats.POST("/owner", handler.Save)
	flats.PUT("/owner/:id/update", handler.Update)
	flats.DELETE("/owner/:id", handler.Delete)
	flats.PUT("/owner/:id/add-family", handler.AddFamilyMember)
	flats.PUT("/owner/:id/edit-family/:index", handler.EditFamilyMember)
	flats.DELETE("/owner/:id/delete-family/:index", handler.RemoveFamilyMember)
}

func (h *FlatOwnerHandler) Count(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	count, err := h.ownerService.Count(c.Request.Context(), scope)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.Count(c, count)
}

func (h *FlatOwnerHandler) ListAll(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	owners, err := h.ownerService.ListAll(c.Request.Context(), scope)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.OK(c, owners)
}

func (h *FlatOwnerHandler) Societies(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	societies, err := h.ownerService.Societies(c.Request.Context(), scope)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}

	names := make([]string, 0, len(societies))
	for _, society := range societies {
		names = append(names, society.Name)
	}
	response.OK(c, names)
}

func (h *FlatOwnerHandler) FlatsOf(c *gin.Context) {
	societyName := strings.TrimSpace(c.Param("societyName"))

	flats, err := h.ownerService.FlatsOf(c.Request.Context(), societyName)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.OK(c, flats)
}

func (h *FlatOwnerHandler) Lookup(c *gin.Context) {
	societyName := strings.TrimSpace(c.Param("societyName"))
	flatNumber := strings.TrimSpace(c.Param("flatNumber"))

	owner, err := h.ownerService.Lookup(c.Request.Context(), societyName, flatNumber)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.OK(c, owner)
}

func (h *FlatOwnerHandler) Save(c *gin.Context) {
	var in service.OwnerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, created, err := h.ownerService.Save(c.Request.Context(), in)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	if created {
		response.Created(c, owner)
		return
	}
	response.OK(c, owner)
}

func (h *FlatOwnerHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in service.OwnerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, err := h.ownerService.UpdateByID(c.Request.Context(), id, in)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.OK(c, owner)
}

func (h *FlatOwnerHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ownerService.Delete(c.Request.Context(), id); err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.Message(c, "owner deleted")
}

func (h *FlatOwnerHandler) AddFamilyMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var member model.FamilyMember
	if err := c.ShouldBindJSON(&member); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, err := h.ownerService.AddFamilyMember(c.Request.Context(), id, member)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.OK(c, owner)
}

func (h *FlatOwnerHandler) EditFamilyMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	index, ok := parseFamilyIndex(c)
	if !ok {
		return
	}

	var member model.FamilyMember
	if err := c.ShouldBindJSON(&member); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, err := h.ownerService.EditFamilyMember(c.Request.Context(), id, index, member)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.OK(c, owner)
}

func (h *FlatOwnerHandler) RemoveFamilyMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	index, ok := parseFamilyIndex(c)
	if !ok {
		return
	}

	owner, err := h.ownerService.RemoveFamilyMember(c.Request.Context(), id, index)
	if err != nil {
		handleOwnerServiceError(c, err)
		return
	}
	response.OK(c, owner)
}

func parseFamilyIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(strings.TrimSpace(c.Param("index")))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid family member index")
		return 0, false
	}
	return index, true
}

func handleOwnerServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidOwnerInput),
		errors.Is(err, service.ErrInvalidFamilyIndex):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOwnerNotFound):
		response.Fail(c, http.StatusNotFound, "owner not found")
	case errors.Is(err, service.ErrSocietyNotFound):
		response.Fail(c, http.StatusNotFound, "society not found")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
