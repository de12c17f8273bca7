package cfdi

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFDocument is a downloaded invoice PDF
type PDFDocument struct {
	InvoiceID string `json:"invoiceId"`
	Bytes     int    `json:"bytes"`
	Pages     int    `json:"pages"`
	Content   []byte `json:"-"`
}

var disableConfigDir sync.Once

// InspectPDF validates data as a PDF and returns its page count
func InspectPDF(data []byte) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	rs := bytes.NewReader(data)
	if err := api.Validate(rs, conf); err != nil {
		return 0, fmt.Errorf("invalid pdf: %w", err)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	pages, err := api.PageCount(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return pages, nil
}
