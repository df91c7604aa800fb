package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"societyhub/internal/api/middleware"
	"societyhub/internal/api/response"
	"societyhub/internal/service"
	"societyhub/internal/tenant"
)

type CouponHandler struct {
	couponService *service.CouponService
	scopes        *tenant.Resolver
}

func NewCouponHandler(couponService *service.CouponService, scopes *tenant.Resolver) *CouponHandler {
	return &CouponHandler{couponService: couponService, scopes: scopes}
}

// RegisterCouponRoutes wires the coupon CRUD behind auth and the scan
// endpoints publicly; the gate scanners hold no credentials. Scans are
// rate limited per client address instead.
func RegisterCouponRoutes(group *gin.RouterGroup, couponService *service.CouponService, scopes *tenant.Resolver) {
	if couponService == nil {
		return
	}

	handler := NewCouponHandler(couponService, scopes)
	coupons := group.Group("/coupons")

	scanLimit := middleware.RateLimitByIP(120, time.Minute)
	coupons.GET("/scan/mobile/:code", scanLimit, handler.ScanMobile)
	coupons.GET("/scan/manual/:code", scanLimit, handler.ScanManual)

	authed := coupons.Group("")
	authed.Use(middleware.JWTAuth())
	authed.GET("", handler.List)
	authed.GET("/count", handler.Count)
	authed.POST("", handler.Issue)
	authed.PUT("/:id", handler.Update)
	authed.DELETE("/:id", handler.Delete)
}

func (h *CouponHandler) Issue(c *gin.Context) {
	var req service.IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	coupons, err := h.couponService.Issue(c.Request.Context(), req)
	if err != nil {
		handleCouponServiceError(c, err)
		return
	}

	if !req.GenerateForAllFlats && len(coupons) == 1 {
		response.Created(c, coupons[0])
		return
	}
	response.Created(c, coupons)
}

func (h *CouponHandler) List(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	coupons, err := h.couponService.List(c.Request.Context(), scope)
	if err != nil {
		handleCouponServiceError(c, err)
		return
	}
	response.OK(c, coupons)
}

func (h *CouponHandler) Count(c *gin.Context) {
	scope, ok := requireScope(c, h.scopes)
	if !ok {
		return
	}

	count, err := h.couponService.Count(c.Request.Context(), scope)
	if err != nil {
		handleCouponServiceError(c, err)
		return
	}
	response.Count(c, count)
}

func (h *CouponHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in service.CouponUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	coupon, err := h.couponService.Update(c.Request.Context(), id, in)
	if err != nil {
		handleCouponServiceError(c, err)
		return
	}
	response.OK(c, coupon)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		handleCouponServiceError(c, err)
		return
	}
	response.Message(c, "coupon deleted")
}

func (h *CouponHandler) ScanMobile(c *gin.Context) {
	snapshot, err := h.couponService.ScanMobile(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleScanError(c, err)
		return
	}
	response.OK(c, gin.H{"coupon": snapshot})
}

func (h *CouponHandler) ScanManual(c *gin.Context) {
	snapshot, err := h.couponService.ScanManual(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleScanError(c, err)
		return
	}
	response.OK(c, gin.H{"coupon": snapshot})
}

// handleScanError keeps the scanner contract: a missing coupon still
// returns a coupon field, set to null.
func handleScanError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrCouponNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"coupon": nil, "message": "coupon not found"})
		return
	}
	response.Fail(c, http.StatusInternalServerError, "internal error")
}

func handleCouponServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSocietyEventRequired),
		errors.Is(err, service.ErrFlatsRequired),
		errors.Is(err, service.ErrInvalidCouponInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCouponCodeTaken):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCouponNotFound):
		response.Fail(c, http.StatusNotFound, "coupon not found")
	case errors.Is(err, service.ErrSocietyNotFound):
		response.Fail(c, http.StatusNotFound, "society not found")
	case errors.Is(err, service.ErrEventNotFound):
		response.Fail(c, http.StatusNotFound, "event not found")
	default:
		response.Fail(c, http.StatusInternalServerError, "internal error")
	}
}
