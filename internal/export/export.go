// Package export builds the downloadable artifacts for the ledger pages and
// resolves filenames for streamed upstream downloads.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/mygads/genfity-order-main-sub002/internal/money"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
)

// FilenameFromHeader reads the suggested filename out of a
// Content-Disposition header, falling back when the header is absent or
// malformed.
func FilenameFromHeader(header string, fallback string) string {
	if strings.TrimSpace(header) == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return fallback
	}
	return name
}

// TransactionsCSV renders the balance ledger rows the way the dashboard
// export does: one line per transaction, amounts in plain decimal.
func TransactionsCSV(transactions []upstream.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Date", "Type", "Description", "Amount", "Balance Before", "Balance After"}); err != nil {
		return nil, err
	}
	for _, tx := range transactions {
		record := []string{
			tx.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			tx.Type,
			tx.Description,
			strconv.FormatFloat(tx.Amount, 'f', -1, 64),
			strconv.FormatFloat(tx.BalanceBefore, 'f', -1, 64),
			strconv.FormatFloat(tx.BalanceAfter, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

// TransactionsPDF renders a printable balance statement.
func TransactionsPDF(merchantName string, currency string, transactions []upstream.Transaction) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Balance Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, merchantName, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Generated "+time.Now().UTC().Format("2 Jan 2006 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	widths := []float64{32, 26, 66, 33, 33}
	headers := []string{"Date", "Type", "Description", "Amount", "Balance"}
	for i, title := range headers {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, tx := range transactions {
		pdf.CellFormat(widths[0], 6, tx.CreatedAt.UTC().Format("02 Jan 06 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tx.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, truncate(tx.Description, 44), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, money.Format(tx.Amount, currency), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, money.Format(tx.BalanceAfter, currency), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(transactions) == 0 {
		pdf.CellFormat(0, 8, "No transactions in the selected range.", "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DefaultFilename builds the fallback export name.
func DefaultFilename(prefix string, extension string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().UTC().Format("20060102-150405"), extension)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}
