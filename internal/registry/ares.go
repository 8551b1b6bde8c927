package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultAresURL is the public REST endpoint of the ARES business register.
const DefaultAresURL = "https://ares.gov.cz/ekonomicke-subjekty-v-be/rest"

var (
	ErrInvalidICO = errors.New("invalid IČO")
	ErrNotFound   = errors.New("company not found")
)

// Company is the subset of a registry record used to prefill parties.
type Company struct {
	CompanyName string `json:"company_name"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	TaxID       string `json:"tax_id"`
	VATID       string `json:"vat_id"`
}

// Registry looks up a company by IČO.
type Registry interface {
	Lookup(ctx context.Context, ico string) (*Company, error)
}

// AresClient queries ARES over HTTP.
type AresClient struct {
	baseURL string
	client  *http.Client
}

// NewAresClient returns a client for baseURL (DefaultAresURL when empty).
func NewAresClient(baseURL string, timeout time.Duration) *AresClient {
	if baseURL == "" {
		baseURL = DefaultAresURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AresClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type aresSubject struct {
	ICO           string `json:"ico"`
	ObchodniJmeno string `json:"obchodniJmeno"`
	DIC           string `json:"dic"`
	Sidlo         struct {
		NazevUlice             string `json:"nazevUlice"`
		NazevCastiObce         string `json:"nazevCastiObce"`
		CisloDomovni           int    `json:"cisloDomovni"`
		CisloOrientacni        int    `json:"cisloOrientacni"`
		CisloOrientacniPismeno string `json:"cisloOrientacniPismeno"`
		PSC                    int    `json:"psc"`
		NazevObce              string `json:"nazevObce"`
	} `json:"sidlo"`
}

// Lookup fetches the company registered under ico.
func (c *AresClient) Lookup(ctx context.Context, ico string) (*Company, error) {
	n, ok := NormalizeICO(ico)
	if !ok || !ValidateICO(n) {
		return nil, ErrInvalidICO
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ekonomicke-subjekty/"+n, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ares request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ares returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("ares read: %w", err)
	}
	var subject aresSubject
	if err := json.Unmarshal(body, &subject); err != nil {
		return nil, fmt.Errorf("ares decode: %w", err)
	}
	return subject.company(n), nil
}

func (s aresSubject) company(ico string) *Company {
	street := s.Sidlo.NazevUlice
	if street == "" {
		street = s.Sidlo.NazevCastiObce
	}
	var house string
	if s.Sidlo.CisloDomovni > 0 {
		house = strconv.Itoa(s.Sidlo.CisloDomovni)
	}
	if s.Sidlo.CisloOrientacni > 0 {
		orient := strconv.Itoa(s.Sidlo.CisloOrientacni) + s.Sidlo.CisloOrientacniPismeno
		if house != "" {
			house += "/" + orient
		} else {
			house = orient
		}
	}
	var psc string
	if s.Sidlo.PSC > 0 {
		psc = fmt.Sprintf("%05d", s.Sidlo.PSC)
	}
	if s.ICO != "" {
		ico = s.ICO
	}
	return &Company{
		CompanyName: s.ObchodniJmeno,
		Street:      street,
		HouseNumber: house,
		PostalCode:  psc,
		City:        s.Sidlo.NazevObce,
		TaxID:       ico,
		VATID:       s.DIC,
	}
}
