package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/registry"
)

type fakeRegistry map[string]*registry.Company

func (f fakeRegistry) Lookup(_ context.Context, ico string) (*registry.Company, error) {
	if !registry.ValidateICO(ico) {
		return nil, registry.ErrInvalidICO
	}
	if c, ok := f[ico]; ok {
		return c, nil
	}
	return nil, registry.ErrNotFound
}

func TestCustomerCRUD(t *testing.T) {
	env := newEnv(t)
	h := NewCustomerHandler(env.db, nil)
	uid := env.user.ID

	body := expectError(t, call(h.Create, http.MethodPost, "/customers", `{"name":"ACME","tax_id":"27074359"}`, uid),
		http.StatusBadRequest, "validation_failed")
	if body.fields()["tax_id"] != "invalid_ico" {
		t.Fatalf("details = %s", body.Details)
	}

	w := call(h.Create, http.MethodPost, "/customers", `{"name":" ACME ","tax_id":"6947","vat_id":"cz00006947"}`, uid)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	c := decode[models.Customer](t, w)
	if c.Name != "ACME" || c.TaxID != "00006947" || c.VATID != "CZ00006947" {
		t.Fatalf("customer = %+v", c)
	}

	w = call(h.List, http.MethodGet, "/customers?q=acm", "", uid)
	if list := decode[[]models.Customer](t, w); len(list) != 1 || list[0].ID != c.ID {
		t.Fatalf("list = %+v", list)
	}

	w = call(h.Update, http.MethodPut, "/customers/x", `{"name":"ACME a.s.","city":"Ostrava"}`, uid, "id", id(c.ID))
	if w.Code != http.StatusOK || decode[models.Customer](t, w).City != "Ostrava" {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	other := env.seedUser(t, "jiny@example.com")
	expectError(t, call(h.Get, http.MethodGet, "/customers/x", "", other.ID, "id", id(c.ID)), http.StatusNotFound, "not_found")
	expectError(t, call(h.Get, http.MethodGet, "/customers/x", "", uid, "id", "abc"), http.StatusNotFound, "not_found")

	if w := call(h.Delete, http.MethodDelete, "/customers/x", "", uid, "id", id(c.ID)); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	expectError(t, call(h.Get, http.MethodGet, "/customers/x", "", uid, "id", id(c.ID)), http.StatusNotFound, "not_found")
}

func TestRegistryLookup(t *testing.T) {
	env := newEnv(t)
	reg := fakeRegistry{"27074358": {CompanyName: "Asseco Central Europe, a.s.", City: "Praha", TaxID: "27074358"}}
	h := NewCustomerHandler(env.db, reg)
	uid := env.user.ID

	w := call(h.Lookup, http.MethodGet, "/registry/x", "", uid, "ico", "27074358")
	if w.Code != http.StatusOK {
		t.Fatalf("lookup: %d %s", w.Code, w.Body.String())
	}
	if got := decode[registry.Company](t, w); got.CompanyName != "Asseco Central Europe, a.s." {
		t.Fatalf("company = %+v", got)
	}
	expectError(t, call(h.Lookup, http.MethodGet, "/registry/x", "", uid, "ico", "abc"), http.StatusBadRequest, "invalid_ico")
	expectError(t, call(h.Lookup, http.MethodGet, "/registry/x", "", uid, "ico", "25596641"), http.StatusNotFound, "not_found")

	nilReg := NewCustomerHandler(env.db, nil)
	expectError(t, call(nilReg.Lookup, http.MethodGet, "/registry/x", "", uid, "ico", "27074358"),
		http.StatusServiceUnavailable, "registry_unavailable")
}

func TestProductCRUD(t *testing.T) {
	env := newEnv(t)
	h := NewProductHandler(env.db)
	uid := env.user.ID

	body := expectError(t, call(h.Create, http.MethodPost, "/products", `{"name":"","unit_price":0,"tax_rate":120}`, uid),
		http.StatusBadRequest, "validation_failed")
	if len(body.fields()) != 3 {
		t.Fatalf("details = %s", body.Details)
	}

	w := call(h.Create, http.MethodPost, "/products", `{"name":"Konzultace","unit":"h","unit_price":1200,"tax_rate":21}`, uid)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	p := decode[models.Product](t, w)

	w = call(h.Update, http.MethodPut, "/products/x", `{"name":"Konzultace","unit":"h","unit_price":1500}`, uid, "id", id(p.ID))
	if got := decode[models.Product](t, w); got.UnitPrice != 1500 || got.TaxRate != nil {
		t.Fatalf("update = %+v", got)
	}

	other := env.seedUser(t, "jiny@example.com")
	expectError(t, call(h.Delete, http.MethodDelete, "/products/x", "", other.ID, "id", id(p.ID)), http.StatusNotFound, "not_found")
	if w := call(h.List, http.MethodGet, "/products", "", other.ID); len(decode[[]models.Product](t, w)) != 0 {
		t.Fatal("products leak between users")
	}
	if w := call(h.Delete, http.MethodDelete, "/products/x", "", uid, "id", id(p.ID)); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
}
