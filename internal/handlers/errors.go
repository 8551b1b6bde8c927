package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/diewo77/go-faktury/auth"
	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/services"
	"github.com/diewo77/go-faktury/validation"
	"gorm.io/gorm"
)

// writeError maps service errors to JSON responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var v validation.Violations
	switch {
	case errors.As(err, &v):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrNotEditable):
		httpx.JSONError(w, http.StatusConflict, "not_editable", nil)
	case errors.Is(err, services.ErrDuplicateNumber):
		httpx.JSONError(w, http.StatusConflict, "duplicate_number", nil)
	default:
		logError(r, err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func logError(r *http.Request, err error) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
}

func badRequest(w http.ResponseWriter, err error) {
	httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
}

func currentUser(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

// pathID reads {id}, answering 404 itself when it is not a valid id.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	}
	return id, ok
}

// findOwned loads record id and hides it unless the current user owns it.
func findOwned[T any, PT interface {
	*T
	models.Ownable
}](r *http.Request, db *gorm.DB, id uint) (PT, error) {
	var rec T
	if err := db.WithContext(r.Context()).First(&rec, id).Error; err != nil {
		return nil, err
	}
	p := PT(&rec)
	if !models.OwnedBy(p, currentUser(r)) {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}
