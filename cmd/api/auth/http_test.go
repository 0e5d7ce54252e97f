package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestExtractBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name        string
		headerValue string
		wantToken   string
		wantErr     error
	}{
		{
			name:    "missing header",
			wantErr: ErrMissingHeader,
		},
		{
			name:        "invalid scheme",
			headerValue: "Basic abc",
			wantErr:     ErrInvalidFormat,
		},
		{
			name:        "missing token part",
			headerValue: "Bearer",
			wantErr:     ErrInvalidFormat,
		},
		{
			name:        "empty token",
			headerValue: "Bearer    ",
			wantErr:     ErrEmptyToken,
		},
		{
			name:        "valid bearer token",
			headerValue: "bearer token-123",
			wantToken:   "token-123",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ginCtx, _ := newTestGinContext(testCase.headerValue)

			token, err := ExtractBearerToken(ginCtx)
			if !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected error %v, got %v", testCase.wantErr, err)
			}
			if token != testCase.wantToken {
				t.Fatalf("expected token %q, got %q", testCase.wantToken, token)
			}
		})
	}
}

func TestAbortWithUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ginCtx, recorder := newTestGinContext("")
	AbortWithUnauthorized(ginCtx, ErrInvalidFormat)

	if !ginCtx.IsAborted() {
		t.Fatalf("expected request to be aborted")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["error"] != ErrInvalidFormat.Error() {
		t.Fatalf("expected error message %q, got %q", ErrInvalidFormat.Error(), body["error"])
	}
}

func TestAbortWithForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ginCtx, recorder := newTestGinContext("")
	AbortWithForbidden(ginCtx)

	if !ginCtx.IsAborted() || recorder.Code != http.StatusForbidden {
		t.Fatalf("expected aborted 403, got aborted=%v status=%d", ginCtx.IsAborted(), recorder.Code)
	}
}

func newTestGinContext(authorizationHeader string) (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	ginCtx, _ := gin.CreateTestContext(recorder)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorizationHeader != "" {
		request.Header.Set("Authorization", authorizationHeader)
	}
	ginCtx.Request = request

	return ginCtx, recorder
}

// roleGuard chains the helpers the way the API guards admin routes.
func roleGuard(manager *JWTManager, required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractBearerToken(c)
		if err != nil {
			AbortWithUnauthorized(c, err)
			return
		}
		_, role, err := manager.Parse(token)
		if err != nil {
			AbortWithUnauthorized(c, err)
			return
		}
		if !Allows(role, required) {
			AbortWithForbidden(c)
			return
		}
		c.Status(http.StatusOK)
	}
}

func TestRoleGuardStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := testManager()

	readerToken, err := manager.Sign("dashboard", RoleReader)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}
	adminToken, err := manager.Sign("operator", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}
	unknownRoleToken, err := manager.Sign("nobody", "guest")
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	testCases := []struct {
		name        string
		required    string
		headerValue string
		wantStatus  int
		wantError   string
	}{
		{name: "no header", required: RoleReader, wantStatus: http.StatusUnauthorized, wantError: ErrMissingHeader.Error()},
		{name: "basic scheme", required: RoleReader, headerValue: "Basic abc", wantStatus: http.StatusUnauthorized, wantError: ErrInvalidFormat.Error()},
		{name: "garbage token", required: RoleReader, headerValue: "Bearer garbage", wantStatus: http.StatusUnauthorized},
		{name: "reader reads", required: RoleReader, headerValue: "Bearer " + readerToken, wantStatus: http.StatusOK},
		{name: "reader saves prompts", required: RoleAdmin, headerValue: "Bearer " + readerToken, wantStatus: http.StatusForbidden, wantError: "forbidden_insufficient_permissions"},
		{name: "admin saves prompts", required: RoleAdmin, headerValue: "Bearer " + adminToken, wantStatus: http.StatusOK},
		{name: "unknown role reads", required: RoleReader, headerValue: "Bearer " + unknownRoleToken, wantStatus: http.StatusForbidden},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ginCtx, recorder := newTestGinContext(testCase.headerValue)
			roleGuard(manager, testCase.required)(ginCtx)
			ginCtx.Writer.WriteHeaderNow()

			if recorder.Code != testCase.wantStatus {
				t.Fatalf("expected status %d, got %d", testCase.wantStatus, recorder.Code)
			}
			if testCase.wantStatus != http.StatusOK && !ginCtx.IsAborted() {
				t.Fatalf("expected request to be aborted")
			}
			if testCase.wantError == "" {
				return
			}
			var body map[string]string
			if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body["error"] != testCase.wantError {
				t.Fatalf("expected error %q, got %q", testCase.wantError, body["error"])
			}
		})
	}
}
