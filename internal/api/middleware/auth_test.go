package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	jwtutil "societyhub/pkg/jwt"
)

var testSigningKey *rsa.PrivateKey

// TestMain provisions a verification key before any test touches the
// key cache, so the middleware runs in enforcing mode here.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	testSigningKey = key

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		panic(err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	os.Setenv("SOCIETYHUB_JWT_PUBLIC_KEY", string(block))

	os.Exit(m.Run())
}

func signedToken(t *testing.T, role string) string {
	t.Helper()
	token, err := jwtutil.GenerateAccessToken(jwtutil.NewClaims("admin-1", "a@x.test", role, time.Hour), testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func guardedRouter(roles ...string) *gin.Engine {
	router := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/guarded", handlers...)
	return router
}

func request(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_RejectsMissingToken(t *testing.T) {
	if rec := request(guardedRouter(), ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuth_AcceptsValidToken(t *testing.T) {
	if rec := request(guardedRouter(), signedToken(t, "admin")); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestJWTAuth_RejectsExpiredToken(t *testing.T) {
	token, err := jwtutil.GenerateAccessToken(jwtutil.NewClaims("admin-1", "a@x.test", "admin", -time.Minute), testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if rec := request(guardedRouter(), token); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole_ForbidsOtherRoles(t *testing.T) {
	router := guardedRouter("superadmin")

	if rec := request(router, signedToken(t, "admin")); rec.Code != http.StatusForbidden {
		t.Errorf("admin token: status = %d, want 403", rec.Code)
	}
	if rec := request(router, signedToken(t, "superadmin")); rec.Code != http.StatusOK {
		t.Errorf("superadmin token: status = %d, want 200", rec.Code)
	}
	// Role comparison ignores case.
	if rec := request(router, signedToken(t, "Superadmin")); rec.Code != http.StatusOK {
		t.Errorf("mixed-case role: status = %d, want 200", rec.Code)
	}
}
