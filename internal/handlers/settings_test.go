package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/go-faktury/auth"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/qr"
)

func uploadRequest(t *testing.T, uid uint, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("logo", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/settings/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(auth.WithUserID(req.Context(), uid))
}

func TestSettingsUpdate(t *testing.T) {
	env := newEnv(t)
	h := NewSettingsHandler(env.settings, env.logos)
	uid := env.user.ID

	w := call(h.Get, http.MethodGet, "/settings", "", uid)
	if st := decode[models.Settings](t, w); st.Currency != "CZK" || st.DueDays != 14 {
		t.Fatalf("defaults = %+v", st)
	}

	body := expectError(t, call(h.Update, http.MethodPut, "/settings", `{"name":"Jan","bank_account":"124/0800"}`, uid),
		http.StatusBadRequest, "validation_failed")
	if _, ok := body.fields()["bank_account"]; !ok {
		t.Fatalf("details = %s", body.Details)
	}

	w = call(h.Update, http.MethodPut, "/settings",
		`{"name":"Jan Novák","bank_account":"19-2000145399/0800","currency":"eur","default_vat_rate":21,"due_days":30}`, uid)
	st := decode[models.Settings](t, w)
	if w.Code != http.StatusOK || st.Currency != "EUR" || st.DueDays != 30 {
		t.Fatalf("update: %d %+v", w.Code, st)
	}
	if st.IBAN() != "CZ6508000000192000145399" {
		t.Fatalf("iban = %q", st.IBAN())
	}
}

func TestLogoUpload(t *testing.T) {
	env := newEnv(t)
	env.saveSettings(t)
	h := NewSettingsHandler(env.settings, env.logos)
	uid := env.user.ID

	png, err := qr.PNG("logo", 64)
	if err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	h.UploadLogo(w, uploadRequest(t, uid, "logo.png", png))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	if key := decode[map[string]string](t, w)["logo_key"]; key == "" {
		t.Fatal("empty logo key")
	}

	w = call(h.Logo, http.MethodGet, "/settings/logo", "", uid)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" || !bytes.Equal(w.Body.Bytes(), png) {
		t.Fatalf("logo: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = httptest.NewRecorder()
	h.UploadLogo(w, uploadRequest(t, uid, "logo.txt", []byte("just some text")))
	expectError(t, w, http.StatusBadRequest, "unsupported_logo_type")

	other := env.seedUser(t, "jiny@example.com")
	expectError(t, call(h.Logo, http.MethodGet, "/settings/logo", "", other.ID), http.StatusNotFound, "not_found")
}

func TestLogoUploadWithoutStorage(t *testing.T) {
	env := newEnv(t)
	h := NewSettingsHandler(env.settings, nil)
	w := httptest.NewRecorder()
	h.UploadLogo(w, uploadRequest(t, env.user.ID, "logo.png", []byte("\x89PNG")))
	expectError(t, w, http.StatusServiceUnavailable, "storage_unavailable")
}

func TestPDFFilename(t *testing.T) {
	cases := map[string]string{
		"2025-001":  "faktura-2025-001.pdf",
		"FV/2025/7": "faktura-FV_2025_7.pdf",
		"č. 12":     "faktura-___12.pdf",
	}
	for in, want := range cases {
		if got := pdfFilename("faktura", in); got != want {
			t.Errorf("pdfFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
