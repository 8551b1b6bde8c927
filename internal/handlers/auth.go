package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-faktury/auth"
	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// allowed answers 403 itself when email is not on the allow-list.
func (h *AuthHandler) allowed(w http.ResponseWriter, r *http.Request, email string) bool {
	ok, err := models.IsEmailAllowed(h.db.WithContext(r.Context()), email)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	if !ok {
		httpx.JSONError(w, http.StatusForbidden, "email_not_allowed", nil)
		return false
	}
	return true
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	email := models.NormalizeEmail(in.Email)
	if !h.allowed(w, r, email) {
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		writeError(w, r, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	email := models.NormalizeEmail(in.Email)

	v := make(validation.Violations)
	validation.Required("email", email, v)
	if len(in.Password) < minPasswordLength {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		writeError(w, r, v)
		return
	}
	if !h.allowed(w, r, email) {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user := models.User{Email: email, Name: in.Name, Password: string(hashedPassword)}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
			return
		}
		writeError(w, r, err)
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, currentUser(r)).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
