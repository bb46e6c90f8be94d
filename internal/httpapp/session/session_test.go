package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret")

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("Expected user id 42, got %d", userID)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	issuer := NewIssuer("test-secret")

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for tampered token, got %v", err)
	}
	if _, err := issuer.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	token, err := NewIssuer("secret-a").Issue(42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := NewIssuer("secret-b").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken across secrets, got %v", err)
	}
}

func authedUserID(issuer *Issuer, decorate func(*http.Request)) (int64, bool) {
	var gotID int64
	var gotOK bool
	handler := Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	decorate(req)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return gotID, gotOK
}

func TestMiddleware(t *testing.T) {
	issuer := NewIssuer("test-secret")
	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Bearer header.
	if id, ok := authedUserID(issuer, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}); !ok || id != 7 {
		t.Errorf("Expected user 7 from bearer header, got %d (%v)", id, ok)
	}

	// Cookie fallback.
	if id, ok := authedUserID(issuer, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}); !ok || id != 7 {
		t.Errorf("Expected user 7 from cookie, got %d (%v)", id, ok)
	}

	// No credentials: the request passes through anonymous.
	if _, ok := authedUserID(issuer, func(r *http.Request) {}); ok {
		t.Error("Expected anonymous request without credentials")
	}

	// Invalid token: also anonymous, not an error.
	if _, ok := authedUserID(issuer, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer bogus")
	}); ok {
		t.Error("Expected anonymous request for invalid token")
	}
}

func TestRequireAuth(t *testing.T) {
	issuer := NewIssuer("test-secret")
	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var reached bool
	handler := Middleware(issuer)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without credentials, got %d", rec.Code)
	}
	if reached {
		t.Error("Handler must not run for unauthenticated request")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !reached {
		t.Errorf("Expected authenticated request to pass, got %d (reached=%v)", rec.Code, reached)
	}
}
