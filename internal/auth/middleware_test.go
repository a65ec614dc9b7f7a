package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	policy := NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	mw := NewMiddleware(testSecret, policy, nil)
	return mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) == "" && r.URL.Path != "/healthz" {
			t.Errorf("identity missing for %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func serve(handler http.Handler, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp.Code
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	if code := serve(newTestHandler(t), "/api/v1/slips?month=3&year=2025", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthMiddleware_ExemptPath(t *testing.T) {
	if code := serve(newTestHandler(t), "/healthz", ""); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestAuthMiddleware_ViewerForbiddenSlipDownload(t *testing.T) {
	token := mustToken(t, "viewer", time.Hour)
	for _, path := range []string{"/api/v1/slips", "/api/v1/slips/summary.xlsx", "/api/v1/apartments/5/slip"} {
		if code := serve(newTestHandler(t), path, token); code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", path, code)
		}
	}
}

func TestAuthMiddleware_ViewerMayPreviewQR(t *testing.T) {
	token := mustToken(t, "viewer", time.Hour)
	if code := serve(newTestHandler(t), "/api/v1/apartments/5/qr.png", token); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestAuthMiddleware_OperatorDownloadsSlips(t *testing.T) {
	token := mustToken(t, "operator", time.Hour)
	if code := serve(newTestHandler(t), "/api/v1/slips", token); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := mustToken(t, "admin", -time.Minute)
	if code := serve(newTestHandler(t), "/api/v1/slips", token); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthMiddleware_UnknownRole(t *testing.T) {
	token := mustToken(t, "owner", time.Hour)
	if code := serve(newTestHandler(t), "/api/v1/apartments/5/qr.png", token); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestIssueJWT_RoundTrip(t *testing.T) {
	token, err := IssueJWT(testSecret, "upravnik", RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseJWT(token, testSecret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "upravnik" || claims.Role != string(RoleAdmin) {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := ParseJWT(token, []byte("other-secret")); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAtLeast(RoleAdmin, RoleOperator) || RoleAtLeast(RoleViewer, RoleOperator) {
		t.Fatal("role ladder broken")
	}
	if RoleAtLeast(Role("owner"), RoleViewer) {
		t.Fatal("unknown role must not pass")
	}
}

func mustToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
