// Package bulkupload reconciles spreadsheet-driven addon-item batches
// against the merchant's existing catalog before they are submitted upstream
// as one mixed create+update request.
package bulkupload

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxRows is the platform cap per batch.
const MaxRows = 200

var ErrNoRows = errors.New("no rows provided")

// Row is one parsed spreadsheet line mapped onto the addon-item schema. ID
// is only present in files produced by a prior export.
type Row struct {
	Line         int     `json:"line"`
	ID           string  `json:"id,omitempty"`
	CategoryName string  `json:"categoryName"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	InputType    string  `json:"inputType,omitempty"`
	IsActive     bool    `json:"isActive"`
	IsRequired   bool    `json:"isRequired"`
	TrackStock   bool    `json:"trackStock"`
	StockQty     *int    `json:"stockQty,omitempty"`

	priceRaw    string
	stockQtyRaw string
}

// UnmarshalJSON keeps rows arriving from the in-page editor consistent with
// the CSV path: an omitted isActive means active.
func (r *Row) UnmarshalJSON(data []byte) error {
	type alias Row
	aux := struct {
		*alias
		IsActive *bool `json:"isActive"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}

// header aliases accepted in uploaded files. Matching is case-insensitive
// and ignores spaces and underscores.
var headerAliases = map[string]string{
	"id":            "id",
	"category":      "category",
	"categoryname":  "category",
	"name":          "name",
	"itemname":      "name",
	"description":   "description",
	"price":         "price",
	"inputtype":     "inputType",
	"active":        "isActive",
	"isactive":      "isActive",
	"required":      "isRequired",
	"isrequired":    "isRequired",
	"trackstock":    "trackStock",
	"stockqty":      "stockQty",
	"stockquantity": "stockQty",
}

// ParseCSV maps named header columns onto rows. Unknown columns are ignored;
// missing optional columns leave zero values. Line numbers are 1-based file
// lines, so data starts at line 2.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRows
		}
		return nil, err
	}

	columns := make(map[string]int)
	for i, name := range header {
		normalized := strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", ""), "_", "")
		if field, ok := headerAliases[normalized]; ok {
			columns[field] = i
		}
	}

	rows := make([]Row, 0)
	line := 1
	for {
		record, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlankRecord(record) {
			continue
		}

		row := Row{Line: line, IsActive: true}
		row.ID = cell(record, columns, "id")
		row.CategoryName = cell(record, columns, "category")
		row.Name = cell(record, columns, "name")
		row.Description = cell(record, columns, "description")
		row.InputType = strings.ToLower(cell(record, columns, "inputType"))

		row.priceRaw = cell(record, columns, "price")
		if row.priceRaw != "" {
			if parsed, err := strconv.ParseFloat(row.priceRaw, 64); err == nil {
				row.Price = parsed
			}
		}

		if raw := cell(record, columns, "isActive"); raw != "" {
			row.IsActive = parseFlag(raw)
		}
		row.IsRequired = parseFlag(cell(record, columns, "isRequired"))
		row.TrackStock = parseFlag(cell(record, columns, "trackStock"))

		row.stockQtyRaw = cell(record, columns, "stockQty")
		if row.stockQtyRaw != "" {
			if parsed, err := strconv.Atoi(row.stockQtyRaw); err == nil {
				row.StockQty = &parsed
			}
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

func cell(record []string, columns map[string]int, field string) string {
	idx, ok := columns[field]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// CSVTemplate is served to merchants as the upload starting point.
func CSVTemplate() string {
	var b strings.Builder
	b.WriteString("Category,Name,Description,Price,Input Type,Active,Required,Track Stock,Stock Qty\n")
	b.WriteString("Toppings,Extra Cheese,Melted cheddar,5000,checkbox,true,false,false,\n")
	b.WriteString("Toppings,Fried Egg,,4000,checkbox,true,false,true,25\n")
	return b.String()
}
