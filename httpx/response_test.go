package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusNotFound, "not_found", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"not_found"}` {
		t.Fatalf("body = %s", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if err := Decode(httptest.NewRecorder(), req, &dst); err != nil || dst.Name != "x" {
		t.Fatalf("Decode = %v, %+v", err, dst)
	}

	for _, body := range []string{`{"nope":1}`, `{"name":"x"}{}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := Decode(httptest.NewRecorder(), req, &dst); err == nil {
			t.Errorf("Decode(%s) accepted", body)
		}
	}
}

func TestBlob(t *testing.T) {
	rec := httptest.NewRecorder()
	Blob(rec, "application/pdf", "2025-001.pdf", []byte("%PDF-1.3"))
	if rec.Header().Get("Content-Disposition") != `inline; filename="2025-001.pdf"` {
		t.Fatalf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Header().Get("Content-Length") != "8" {
		t.Fatalf("length = %q", rec.Header().Get("Content-Length"))
	}
}

func TestPathID(t *testing.T) {
	mux := http.NewServeMux()
	var got uint
	var ok bool
	mux.HandleFunc("GET /x/{id}", func(w http.ResponseWriter, r *http.Request) { got, ok = PathID(r, "id") })

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/12", nil))
	if !ok || got != 12 {
		t.Fatalf("PathID = %d, %v", got, ok)
	}
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/abc", nil))
	if ok {
		t.Fatal("non-numeric id accepted")
	}
}
