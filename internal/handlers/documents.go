package handlers

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/i18n"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/pdf"
	"github.com/diewo77/go-faktury/view"
)

// pdfFilename turns a document number into a safe download name.
func pdfFilename(prefix, number string) string {
	clean := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, number)
	return prefix + "-" + clean + ".pdf"
}

func writePDF(w http.ResponseWriter, r *http.Request, doc pdf.Document, filename string) {
	out, err := pdf.Render(doc)
	if err != nil {
		logError(r, err)
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	httpx.Blob(w, "application/pdf", filename, out)
}

func printPage(w http.ResponseWriter, r *http.Request, name string, doc pdf.Document, st *models.Settings, qrURL string) {
	data := map[string]any{"Doc": doc, "QRURL": qrURL}
	if st.LogoKey != "" {
		data["LogoURL"] = "/settings/logo"
	}
	if err := view.Render(w, r, name, data); err != nil {
		logError(r, err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func requestLang(r *http.Request) string {
	return i18n.LangFromContext(r.Context())
}
