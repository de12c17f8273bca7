package cfdi_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/sat-mexico/internal/cfdi"
	"github.com/rezonia/sat-mexico/internal/model"
)

// minimalPDF writes a PDF with the given number of blank pages and a
// correct cross-reference table
func minimalPDF(pages int) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
	}

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func TestInspectPDF(t *testing.T) {
	pages, err := cfdi.InspectPDF(minimalPDF(2))
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	_, err = cfdi.InspectPDF([]byte("definitely not a pdf"))
	assert.Error(t, err)
}

func TestDownloadPDF(t *testing.T) {
	doc := minimalPDF(1)
	server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/invoices/inv_1/pdf", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(doc)
	})
	svc := cfdi.NewService(cfdi.WithFacturapiURL(server.URL))

	result, err := svc.DownloadPDF(context.Background(), facturapiCreds(), "inv_1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, "inv_1", result.InvoiceID)
	assert.Equal(t, len(doc), result.Bytes)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, doc, result.Content)
}

func TestDownloadPDF_Errors(t *testing.T) {
	t.Run("missing invoice id", func(t *testing.T) {
		server, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {})
		svc := cfdi.NewService(cfdi.WithFacturapiURL(server.URL))

		_, err := svc.DownloadPDF(context.Background(), facturapiCreds(), "")
		var paramErr *model.ParamError
		require.ErrorAs(t, err, &paramErr)
		assert.Equal(t, "invoiceId", paramErr.Param)
		assert.Zero(t, atomic.LoadInt32(calls))
	})

	t.Run("provider none", func(t *testing.T) {
		svc := cfdi.NewService()
		_, err := svc.DownloadPDF(context.Background(), &model.Credentials{}, "inv_1")
		var cfgErr *model.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("not found", func(t *testing.T) {
		server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"not found"}`)
		})
		svc := cfdi.NewService(cfdi.WithFacturapiURL(server.URL))

		_, err := svc.DownloadPDF(context.Background(), facturapiCreds(), "missing")
		var subErr *model.SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, http.StatusNotFound, subErr.StatusCode)
	})

	t.Run("not a pdf", func(t *testing.T) {
		server, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html></html>")
		})
		svc := cfdi.NewService(cfdi.WithFacturapiURL(server.URL))

		_, err := svc.DownloadPDF(context.Background(), facturapiCreds(), "inv_1")
		var subErr *model.SubmissionError
		assert.ErrorAs(t, err, &subErr)
	})
}
