package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/glowingstore/internal/auth"
	"github.com/simp-lee/glowingstore/internal/domain"
)

type stubVerifier struct {
	err      error
	lastUser string
}

func (v *stubVerifier) VerifyActive(ctx context.Context, userName, securityStamp string) error {
	v.lastUser = userName
	return v.err
}

func newAuthRouter(t *testing.T, verifier AccountVerifier) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), "glowingstore", "glowingstore-api", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	r := gin.New()
	protected := r.Group("/", Authentication(tokens, verifier, nil))
	protected.GET("/me", func(c *gin.Context) {
		authCtx, ok := auth.FromGin(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "no context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": authCtx.UserName})
	})
	protected.GET("/admin", Administrator(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, tokens
}

func mintToken(t *testing.T, tokens *auth.TokenService, roles ...string) string {
	t.Helper()
	user := &domain.User{
		BaseEntity:    domain.BaseEntity{ID: uuid.New()},
		UserName:      "ada@example.com",
		Email:         "ada@example.com",
		SecurityStamp: "stamp-1",
	}
	token, _, err := tokens.Generate(user, roles)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return token
}

func doRequest(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthentication_MissingOrMalformedHeader(t *testing.T) {
	r, _ := newAuthRouter(t, &stubVerifier{})

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		if w := doRequest(r, "/me", header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthentication_InvalidToken(t *testing.T) {
	r, _ := newAuthRouter(t, &stubVerifier{})

	if w := doRequest(r, "/me", "Bearer not.a.token"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthentication_InactiveAccount(t *testing.T) {
	for _, verifierErr := range []error{
		domain.NewAppError(domain.CodeForbidden, "token has been invalidated", nil),
		domain.NewAppError(domain.CodeNotFound, "this account doesn't exist", nil),
	} {
		verifier := &stubVerifier{err: verifierErr}
		r, tokens := newAuthRouter(t, verifier)
		token := mintToken(t, tokens, domain.RoleUser)

		if w := doRequest(r, "/me", "Bearer "+token); w.Code != http.StatusForbidden {
			t.Errorf("%v: status = %d, want 403", verifierErr, w.Code)
		}
		if verifier.lastUser != "ada@example.com" {
			t.Errorf("verifier saw user %q, want ada@example.com", verifier.lastUser)
		}
	}
}

func TestAuthentication_VerifierFailure(t *testing.T) {
	r, tokens := newAuthRouter(t, &stubVerifier{err: domain.NewAppError(domain.CodeInternal, "db down", nil)})
	token := mintToken(t, tokens, domain.RoleUser)

	if w := doRequest(r, "/me", "Bearer "+token); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestAuthentication_AttachesContext(t *testing.T) {
	r, tokens := newAuthRouter(t, &stubVerifier{})
	token := mintToken(t, tokens, domain.RoleUser)

	w := doRequest(r, "/me", "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body)
	}
	if body := w.Body.String(); !strings.Contains(body, "ada@example.com") {
		t.Errorf("body %q missing user name", body)
	}
}

func TestRequireAnyRole(t *testing.T) {
	r, tokens := newAuthRouter(t, &stubVerifier{})

	// User role is not enough for the Administrator policy.
	token := mintToken(t, tokens, domain.RoleUser)
	if w := doRequest(r, "/admin", "Bearer "+token); w.Code != http.StatusForbidden {
		t.Errorf("User role: status = %d, want 403", w.Code)
	}

	// Either administrative role passes.
	for _, role := range []string{domain.RoleAdministrator, domain.RolePowerUser} {
		token := mintToken(t, tokens, role)
		if w := doRequest(r, "/admin", "Bearer "+token); w.Code != http.StatusOK {
			t.Errorf("%s role: status = %d, want 200", role, w.Code)
		}
	}
}

func TestRequireAnyRole_WithoutAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", Administrator(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	if w := doRequest(r, "/admin", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
