package pdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/johnfercher/maroto/v2/pkg/merge"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNothingToMerge is returned by Merge for an empty input.
var ErrNothingToMerge = errors.New("no documents to merge")

// Merge concatenates rendered documents into one PDF, in order.
func Merge(pdfs [][]byte) ([]byte, error) {
	switch len(pdfs) {
	case 0:
		return nil, ErrNothingToMerge
	case 1:
		return pdfs[0], nil
	}
	out, err := merge.Bytes(pdfs...)
	if err != nil {
		return nil, fmt.Errorf("merge pdfs: %w", err)
	}
	return out, nil
}

// PageCount reads the number of pages of a PDF.
func PageCount(b []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(b), conf)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}
