package handlers

import (
	"net/http"
	"testing"

	"github.com/diewo77/go-faktury/internal/models"
)

func TestSignupAndLogin(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)
	body := `{"email":"Eva@Example.com","password":"tajneheslo","name":"Eva"}`

	expectError(t, call(h.Signup, http.MethodPost, "/signup", body, 0), http.StatusForbidden, "email_not_allowed")

	if err := db.Create(&models.AllowedEmail{Email: "eva@example.com"}).Error; err != nil {
		t.Fatal(err)
	}
	w := call(h.Signup, http.MethodPost, "/signup", body, 0)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("no session cookie after signup")
	}
	user := decode[models.User](t, w)
	if user.Email != "eva@example.com" || user.Password != "" {
		t.Fatalf("user = %+v", user)
	}

	expectError(t, call(h.Signup, http.MethodPost, "/signup", body, 0), http.StatusConflict, "email_taken")

	expectError(t, call(h.Login, http.MethodPost, "/login", `{"email":"eva@example.com","password":"spatne"}`, 0),
		http.StatusUnauthorized, "invalid_credentials")

	w = call(h.Login, http.MethodPost, "/login", `{"email":"EVA@example.com","password":"tajneheslo"}`, 0)
	if w.Code != http.StatusOK || len(w.Result().Cookies()) == 0 {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}

	w = call(h.Me, http.MethodGet, "/me", "", user.ID)
	if w.Code != http.StatusOK || decode[models.User](t, w).ID != user.ID {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
}

func TestSignupValidation(t *testing.T) {
	h := NewAuthHandler(setupTestDB(t))
	body := expectError(t, call(h.Signup, http.MethodPost, "/signup", `{"email":"","password":"short"}`, 0),
		http.StatusBadRequest, "validation_failed")
	if body.fields()["email"] != "required" || body.fields()["password"] != "too_short" {
		t.Fatalf("details = %s", body.Details)
	}
	expectError(t, call(h.Signup, http.MethodPost, "/signup", `{"email":1}`, 0), http.StatusBadRequest, "invalid_json")
}

func TestLoginNotAllowed(t *testing.T) {
	h := NewAuthHandler(setupTestDB(t))
	expectError(t, call(h.Login, http.MethodPost, "/login", `{"email":"x@example.com","password":"whatever1"}`, 0),
		http.StatusForbidden, "email_not_allowed")
}

func TestLogout(t *testing.T) {
	h := NewAuthHandler(setupTestDB(t))
	w := call(h.Logout, http.MethodPost, "/logout", "", 0)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", w.Code)
	}
	c := w.Result().Cookies()
	if len(c) != 1 || c[0].MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %v", c)
	}
}
