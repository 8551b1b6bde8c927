package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func sessionRequest(t *testing.T, uid uint) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, uid)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	uid, ok := ParseSession(sessionRequest(t, 42))
	if !ok || uid != 42 {
		t.Fatalf("ParseSession = %d, %v", uid, ok)
	}
}

func TestParseSessionRejectsTampering(t *testing.T) {
	req := sessionRequest(t, 7)
	c, _ := req.Cookie(sessionCookieName)
	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "8" + c.Value[1:]})
	if _, ok := ParseSession(forged); ok {
		t.Fatal("forged session accepted")
	}

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	bare.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "7"})
	if _, ok := ParseSession(bare); ok {
		t.Fatal("unsigned session accepted")
	}
}

func TestConfigureChangesSecret(t *testing.T) {
	req := sessionRequest(t, 3)
	defer Configure(Options{Secret: devSecret, TTL: 14 * 24 * time.Hour})

	Configure(Options{Secret: "another-secret"})
	if UsingDevSecret() {
		t.Fatal("secret not applied")
	}
	if _, ok := ParseSession(req); ok {
		t.Fatal("session signed with old secret accepted")
	}
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Middleware(RequireAuth(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/invoices", nil))
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Fatalf("anonymous api call: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/invoices/1/print", nil)
	req.Header.Set("Accept", "text/html")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous browser: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, 5))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("signed in: %d", rec.Code)
	}
}

func TestRequireAuthVerifier(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return uid == 1 })
	defer SetUserVerifier(nil)

	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		if uid != 1 {
			t.Errorf("uid = %d", uid)
		}
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, 2))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("known user: %d", rec.Code)
	}
}
