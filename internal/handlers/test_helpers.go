package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/kgrierson/stronghold/internal/models"
	"github.com/kgrierson/stronghold/internal/services"
	pkghttp "github.com/kgrierson/stronghold/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc          func(ctx context.Context, username, password string) (*services.LoginResult, error)
	ChangePasswordFunc func(ctx context.Context, accountID int64, currentPassword, newPassword string) (bool, error)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return &services.LoginResult{Message: services.MsgInvalidCredentials}, nil
	}
	return m.LoginFunc(ctx, username, password)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) (bool, error) {
	if m.ChangePasswordFunc == nil {
		return false, nil
	}
	return m.ChangePasswordFunc(ctx, accountID, currentPassword, newPassword)
}

func (m *MockAuthService) ValidatePassword(password string) bool {
	return true
}

// MockSession implements SessionInterface for testing
type MockSession struct {
	Current     *models.Account
	ClearedCnt  int
	GrantAccess bool
}

func (m *MockSession) SetCurrentUser(account *models.Account) { m.Current = account }

func (m *MockSession) ClearCurrentUser() {
	m.Current = nil
	m.ClearedCnt++
}

func (m *MockSession) CurrentUser() *models.Account { return m.Current }

func (m *MockSession) HasRequiredAccess(required models.AccessLevel) bool {
	return m.GrantAccess
}

// MockAuditService implements AuditServiceInterface for testing
type MockAuditService struct {
	GetAccountTrailFunc func(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error)
}

func (m *MockAuditService) GetAccountTrail(ctx context.Context, accountID int64, limit, offset int) ([]*models.SecurityEvent, error) {
	if m.GetAccountTrailFunc == nil {
		return []*models.SecurityEvent{}, nil
	}
	return m.GetAccountTrailFunc(ctx, accountID, limit, offset)
}
