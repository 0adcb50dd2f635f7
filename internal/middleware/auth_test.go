package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jobgate/api/internal/authorizer"
	"jobgate/api/internal/expiry"
	"jobgate/api/internal/models"
	"jobgate/api/internal/repository"
	"jobgate/api/internal/session"
)

type staticResolver map[string]models.Role

func (r staticResolver) ResolveRole(ctx context.Context, token string) (models.Role, error) {
	role, ok := r[token]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	return role, nil
}

func newTestRouter(t *testing.T, resolver authorizer.RoleResolver, store session.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	idle := expiry.IdleTimeout{Timeout: expiry.DefaultIdleTimeout}
	auth := authorizer.New(resolver, store,
		map[models.Role]expiry.Policy{}, idle, zerolog.Nop(), nil)

	router := gin.New()
	protected := router.Group("/")
	protected.Use(Authorize(auth))
	protected.GET("/whoami", func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": string(identity.Role)})
	})
	protected.GET("/admin",
		RequireRoles(models.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return router
}

func doRequest(router *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthorizeMiddleware_NoHeaderIsVisitor(t *testing.T) {
	router := newTestRouter(t, staticResolver{}, session.NewMemoryStore())

	rec := doRequest(router, "/whoami", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body != `{"role":"visitor"}` {
		t.Errorf("body = %s", body)
	}
}

func TestAuthorizeMiddleware_UnknownTokenRejectedWithEmptyBody(t *testing.T) {
	router := newTestRouter(t, staticResolver{}, session.NewMemoryStore())

	rec := doRequest(router, "/whoami", "garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// Rejections leak nothing about which check failed.
	if rec.Body.Len() != 0 {
		t.Errorf("401 body should be empty, got %q", rec.Body.String())
	}
}

func TestAuthorizeMiddleware_ValidSession(t *testing.T) {
	store := session.NewMemoryStore()
	sess, err := store.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	router := newTestRouter(t, staticResolver{sess.Token: models.RoleApplicant}, store)

	rec := doRequest(router, "/whoami", sess.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body != `{"role":"applicant"}` {
		t.Errorf("body = %s", body)
	}

	// The entry survives and was refreshed, not evicted.
	if _, err := store.Get(context.Background(), sess.Token); err != nil {
		t.Errorf("session should remain in store: %v", err)
	}
}

func TestRequireRoles_ForbiddenForWrongRole(t *testing.T) {
	store := session.NewMemoryStore()
	sess, err := store.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	router := newTestRouter(t, staticResolver{sess.Token: models.RoleApplicant}, store)

	rec := doRequest(router, "/admin", sess.Token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRoles_VisitorBlockedFromAdmin(t *testing.T) {
	router := newTestRouter(t, staticResolver{}, session.NewMemoryStore())

	rec := doRequest(router, "/admin", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"Bearer  abc ", "abc"},
		{"abc", "abc"},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			c.Request.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(c); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
