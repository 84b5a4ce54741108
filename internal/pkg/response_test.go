package pkg

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/glowingstore/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newResponseTestContext creates a gin context backed by an httptest.ResponseRecorder.
func newResponseTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

// newResponseTestContextWithBody creates a gin context with a JSON request body.
func newResponseTestContextWithBody(body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestSuccess(t *testing.T) {
	c, w := newResponseTestContext()

	data := map[string]string{"greeting": "hello"}
	Success(c, data)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Errorf("expected code %d, got %d", http.StatusOK, resp.Code)
	}
	if resp.Message != "success" {
		t.Errorf("expected message %q, got %q", "success", resp.Message)
	}
	if resp.Data == nil {
		t.Error("expected non-nil data")
	}
}

func TestCreated(t *testing.T) {
	c, w := newResponseTestContext()

	Created(c, map[string]string{"id": "abc"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Message != "created" {
		t.Errorf("expected message %q, got %q", "created", resp.Message)
	}
}

func TestCreatedAt_SetsLocationHeader(t *testing.T) {
	c, w := newResponseTestContext()

	CreatedAt(c, "/api/categories/abc", map[string]string{"id": "abc"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if got := w.Header().Get("Location"); got != "/api/categories/abc" {
		t.Errorf("Location = %q, want %q", got, "/api/categories/abc")
	}
}

func TestNoContent(t *testing.T) {
	c, w := newResponseTestContext()

	NoContent(c)
	// gin's engine flushes the deferred header after the handler chain;
	// CreateTestContext bypasses the engine, so flush it here.
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestError_AppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *domain.AppError
		wantStatus int
	}{
		{"not found", domain.NewAppError(domain.CodeNotFound, "no product found", nil), http.StatusNotFound},
		{"conflict", domain.NewAppError(domain.CodeConflict, "this category already exists", nil), http.StatusConflict},
		{"validation", domain.NewAppError(domain.CodeValidation, "invalid id", nil), http.StatusBadRequest},
		{"client error", domain.NewAppError(domain.CodeClientError, "category not found", nil), http.StatusBadRequest},
		{"forbidden", domain.NewAppError(domain.CodeForbidden, "account is locked out", nil), http.StatusForbidden},
		{"internal", domain.NewAppError(domain.CodeInternal, "boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newResponseTestContext()
			Error(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Message != tt.err.Message {
				t.Errorf("expected message %q, got %q", tt.err.Message, resp.Message)
			}
		})
	}
}

func TestError_PlainError(t *testing.T) {
	c, w := newResponseTestContext()

	Error(c, http.ErrHandlerTimeout)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	// Plain errors must not leak their text to clients.
	if resp.Message != "internal error" {
		t.Errorf("expected message %q, got %q", "internal error", resp.Message)
	}
}

func TestList_WrapsListResult(t *testing.T) {
	c, w := newResponseTestContext()

	result := NewListResult([]string{"a", "b"}, 5, 3, true)
	List(c, result)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp struct {
		Data ListResult[string] `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Data.Content) != 2 || resp.Data.TotalCount != 5 || resp.Data.TotalPages != 3 || !resp.Data.HasNextPage {
		t.Errorf("unexpected payload: %+v", resp.Data)
	}
}

func TestNewListResult_NilContent(t *testing.T) {
	result := NewListResult[string](nil, 0, 0, false)
	if result.Content == nil {
		t.Error("expected empty slice, got nil")
	}

	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"content":[]`) {
		t.Errorf("expected empty content array, got %s", b)
	}
}

type bindInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func TestBindAndValidate_Success(t *testing.T) {
	c, w := newResponseTestContextWithBody(`{"name":"Ada","email":"ada@example.com"}`)

	var in bindInput
	if !BindAndValidate(c, &in) {
		t.Fatalf("expected success, response: %s", w.Body)
	}
	if in.Name != "Ada" || in.Email != "ada@example.com" {
		t.Errorf("unexpected bound input: %+v", in)
	}
}

func TestBindAndValidate_FieldErrorsUseJSONTags(t *testing.T) {
	c, w := newResponseTestContextWithBody(`{"email":"not-an-email"}`)

	var in bindInput
	if BindAndValidate(c, &in) {
		t.Fatal("expected validation failure")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if _, ok := resp.Errors["name"]; !ok {
		t.Errorf("expected error keyed by json tag %q, got %v", "name", resp.Errors)
	}
	if _, ok := resp.Errors["email"]; !ok {
		t.Errorf("expected error keyed by json tag %q, got %v", "email", resp.Errors)
	}
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	c, w := newResponseTestContextWithBody(`{"name":`)

	var in bindInput
	if BindAndValidate(c, &in) {
		t.Fatal("expected bind failure")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestParseJSONTagName(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"name", "name"},
		{"name,omitempty", "name"},
		{"-", ""},
		{"", ""},
		{",omitempty", ""},
	}

	for _, tt := range tests {
		if got := parseJSONTagName(tt.tag); got != tt.want {
			t.Errorf("parseJSONTagName(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}
