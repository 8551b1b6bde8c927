package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/registry"
	"github.com/diewo77/go-faktury/validation"
	"gorm.io/gorm"
)

type CustomerHandler struct {
	db       *gorm.DB
	registry registry.Registry
}

// NewCustomerHandler wires the customer endpoints; reg serves the IČO lookup.
func NewCustomerHandler(db *gorm.DB, reg registry.Registry) *CustomerHandler {
	return &CustomerHandler{db: db, registry: reg}
}

type customerInput struct {
	Name        string `json:"name"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	TaxID       string `json:"tax_id"`
	VATID       string `json:"vat_id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

func (in customerInput) apply(c *models.Customer) error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	taxID := strings.TrimSpace(in.TaxID)
	if taxID != "" {
		if ico, ok := registry.NormalizeICO(taxID); ok && registry.ValidateICO(ico) {
			taxID = ico
		} else {
			v["tax_id"] = "invalid_ico"
		}
	}
	if err := v.Err(); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Street = in.Street
	c.HouseNumber = in.HouseNumber
	c.PostalCode = in.PostalCode
	c.City = in.City
	c.TaxID = taxID
	c.VATID = strings.ToUpper(strings.TrimSpace(in.VATID))
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = in.Phone
	return nil
}

func (h *CustomerHandler) find(r *http.Request, id uint) (*models.Customer, error) {
	return findOwned[models.Customer](r, h.db, id)
}

// List returns the customers, optionally filtered by ?q= on name or IČO.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.WithContext(r.Context()).Where("user_id = ?", currentUser(r))
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR tax_id LIKE ?", like, like)
	}
	customers := []models.Customer{}
	if err := q.Order("name").Find(&customers).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in customerInput
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	c := models.Customer{UserID: currentUser(r)}
	if err := in.apply(&c); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Create(&c).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.find(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.find(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in customerInput
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	if err := in.apply(c); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Save(c).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete soft-deletes a customer. Documents keep pointing at the record.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.find(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(c).Error; err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Lookup fetches a company from the business register by IČO, for
// prefilling a customer or the supplier settings.
func (h *CustomerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "registry_unavailable", nil)
		return
	}
	company, err := h.registry.Lookup(r.Context(), r.PathValue("ico"))
	switch {
	case errors.Is(err, registry.ErrInvalidICO):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_ico", nil)
	case errors.Is(err, registry.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case err != nil:
		writeRegistryError(w, r, err)
	default:
		httpx.JSON(w, http.StatusOK, company)
	}
}

func writeRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	logError(r, err)
	httpx.JSONError(w, http.StatusBadGateway, "registry_unavailable", nil)
}
