// Package v1 holds the HTTP handlers of the admin API. Handlers stay
// thin: bind, resolve the caller's scope, call the service, translate
// service errors to status codes.
package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"societyhub/internal/api/middleware"
	"societyhub/internal/api/response"
	"societyhub/internal/repository"
	"societyhub/internal/tenant"
)

// callerEmail prefers the authenticated identity over the adminEmail
// query parameter, so a token holder cannot impersonate another tenant.
func callerEmail(c *gin.Context) string {
	if claims, ok := middleware.GetClaims(c); ok {
		return claims.Email
	}
	if email := strings.TrimSpace(c.Query("adminEmail")); email != "" {
		return email
	}
	return strings.TrimSpace(c.Query("email"))
}

// requireScope resolves the tenant scope or writes a 400 and reports
// false.
func requireScope(c *gin.Context, resolver *tenant.Resolver) (repository.TenantScope, bool) {
	scope, err := resolver.Resolve(c.Request.Context(), callerEmail(c))
	if err != nil {
		if err == tenant.ErrEmailRequired {
			response.Fail(c, http.StatusBadRequest, "adminEmail is required")
		} else {
			response.Fail(c, http.StatusInternalServerError, "could not resolve caller")
		}
		return repository.TenantScope{}, false
	}
	return scope, true
}

// optionalScope resolves the scope when the caller supplied an email
// and returns nil otherwise.
func optionalScope(c *gin.Context, resolver *tenant.Resolver) (*repository.TenantScope, error) {
	email := callerEmail(c)
	if email == "" {
		return nil, nil
	}
	scope, err := resolver.Resolve(c.Request.Context(), email)
	if err != nil {
		return nil, err
	}
	return &scope, nil
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
