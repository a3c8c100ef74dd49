package export

import (
	"strings"
	"testing"
	"time"

	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
)

func TestFilenameFromHeader(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "quoted filename",
			header:   `attachment; filename="transactions-2026-08.csv"`,
			expected: "transactions-2026-08.csv",
		},
		{
			name:     "bare filename",
			header:   "attachment; filename=ledger.xlsx",
			expected: "ledger.xlsx",
		},
		{
			name:     "missing header falls back",
			header:   "",
			expected: "export.csv",
		},
		{
			name:     "malformed header falls back",
			header:   ";;;",
			expected: "export.csv",
		},
		{
			name:     "no filename param falls back",
			header:   "attachment",
			expected: "export.csv",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FilenameFromHeader(tc.header, "export.csv"); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestTransactionsCSV(t *testing.T) {
	created := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	data, err := TransactionsCSV([]upstream.Transaction{
		{
			Type:          "TOPUP",
			Amount:        500000,
			BalanceBefore: 100000,
			BalanceAfter:  600000,
			Description:   "Manual topup, verified",
			CreatedAt:     created,
		},
	})
	if err != nil {
		t.Fatalf("csv build failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "Date,Type,Description,Amount,Balance Before,Balance After" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Manual topup, verified"`) {
		t.Fatalf("expected comma-bearing description quoted, got %q", lines[1])
	}
	if !strings.Contains(lines[1], "2026-08-20 09:30:00") {
		t.Fatalf("expected formatted date, got %q", lines[1])
	}
}

func TestTransactionsPDF(t *testing.T) {
	data, err := TransactionsPDF("Warung Sedap", "IDR", []upstream.Transaction{
		{Type: "ORDER_FEE", Amount: -500, BalanceAfter: 99500, Description: "Order fee", CreatedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("pdf build failed: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatalf("expected a pdf document, got %d bytes", len(data))
	}
}

func TestTruncateMultibyte(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		max      int
		expected string
	}{
		{"short ascii untouched", "Nasi Goreng", 20, "Nasi Goreng"},
		{"long ascii cut", "abcdefgh", 5, "abcd…"},
		{"multibyte cut on rune boundary", "Soto Ayam Spesial – Ekstra Telur", 12, "Soto Ayam S…"},
		{"exactly max untouched", "Ayam Bakar Café", 15, "Ayam Bakar Café"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.value, tc.max)
			if got != tc.expected {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tc.value, tc.max, got, tc.expected)
			}
			for _, r := range got {
				if r == '�' {
					t.Fatalf("truncate produced a broken rune in %q", got)
				}
			}
		})
	}
}

func TestDefaultFilename(t *testing.T) {
	name := DefaultFilename("transactions", "csv")
	if !strings.HasPrefix(name, "transactions-") || !strings.HasSuffix(name, ".csv") {
		t.Fatalf("unexpected filename %q", name)
	}
}
