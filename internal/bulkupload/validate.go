package bulkupload

import (
	"fmt"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
)

// Report is the per-row validation outcome. Errors block the whole batch;
// warnings are informational and never block.
type Report struct {
	Row      Row      `json:"row"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// ValidateRows checks every row independently against the fetched category
// snapshot: required fields, numeric bounds, referential category check, and
// the conditional stock requirement.
func ValidateRows(rows []Row, categories []upstream.AddonCategory) []Report {
	categoryNames := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		categoryNames[strings.ToLower(strings.TrimSpace(category.Name))] = struct{}{}
	}

	reports := make([]Report, 0, len(rows))
	for _, row := range rows {
		report := Report{Row: row}

		if strings.TrimSpace(row.Name) == "" {
			report.Errors = append(report.Errors, "Name is required")
		}
		if strings.TrimSpace(row.CategoryName) == "" {
			report.Errors = append(report.Errors, "Category is required")
		} else if _, ok := categoryNames[strings.ToLower(strings.TrimSpace(row.CategoryName))]; !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("Category %q does not exist", row.CategoryName))
		}

		if row.priceRaw != "" && !isNumeric(row.priceRaw) {
			report.Errors = append(report.Errors, fmt.Sprintf("Price %q is not a number", row.priceRaw))
		} else if row.Price < 0 {
			report.Errors = append(report.Errors, "Price must be zero or greater")
		} else if row.Price == 0 {
			report.Warnings = append(report.Warnings, "Price is zero; the addon will be free")
		}

		if row.TrackStock {
			if row.StockQty == nil {
				report.Errors = append(report.Errors, "Stock quantity is required when stock tracking is enabled")
			} else if *row.StockQty < 0 {
				report.Errors = append(report.Errors, "Stock quantity must be zero or greater")
			}
		} else if row.stockQtyRaw != "" {
			report.Warnings = append(report.Warnings, "Stock quantity is ignored while stock tracking is off")
		}

		if row.InputType != "" && row.InputType != "checkbox" && row.InputType != "radio" {
			report.Errors = append(report.Errors, fmt.Sprintf("Input type %q must be checkbox or radio", row.InputType))
		}

		if len(row.Description) > 500 {
			report.Warnings = append(report.Warnings, "Description is longer than 500 characters and may be truncated")
		}

		reports = append(reports, report)
	}
	return reports
}

// HasBlockingErrors reports whether any row blocks the batch.
func HasBlockingErrors(reports []Report) bool {
	for _, report := range reports {
		if report.HasErrors() {
			return true
		}
	}
	return false
}

func isNumeric(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	dot := false
	for i, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
