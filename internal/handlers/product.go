package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/validation"
	"gorm.io/gorm"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

type productInput struct {
	Name      string   `json:"name"`
	Unit      string   `json:"unit"`
	UnitPrice float64  `json:"unit_price"`
	TaxRate   *float64 `json:"tax_rate"`
}

func (in productInput) apply(p *models.Product) error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.PositiveFloat("unit_price", in.UnitPrice, v)
	if in.TaxRate != nil {
		validation.RangeFloat("tax_rate", *in.TaxRate, 0, 100, v)
	}
	if err := v.Err(); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Unit = strings.TrimSpace(in.Unit)
	p.UnitPrice = in.UnitPrice
	p.TaxRate = in.TaxRate
	return nil
}

func (h *ProductHandler) find(r *http.Request, id uint) (*models.Product, error) {
	return findOwned[models.Product](r, h.db, id)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.db.WithContext(r.Context()).Where("user_id = ?", currentUser(r))
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	products := []models.Product{}
	if err := q.Order("name").Find(&products).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	p := models.Product{UserID: currentUser(r)}
	if err := in.apply(&p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Create(&p).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.find(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.find(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in productInput
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	if err := in.apply(p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Save(p).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", id, currentUser(r)).Delete(&models.Product{})
	if res.Error != nil {
		writeError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
