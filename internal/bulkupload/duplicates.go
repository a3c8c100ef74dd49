package bulkupload

import (
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
)

const (
	MatchedByID   = "id"
	MatchedByName = "name+category"
)

// Match pairs an upload row with an existing catalog record. Two explicit
// paths: an ID carried over from a prior export wins; otherwise the
// case-insensitive (name, category) composite key is consulted.
type Match struct {
	RowIndex   int    `json:"rowIndex"`
	Line       int    `json:"line"`
	ExistingID string `json:"existingId"`
	MatchedBy  string `json:"matchedBy"`
}

func compositeKey(name string, category string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "::" + strings.ToLower(strings.TrimSpace(category))
}

// DetectDuplicates resolves every row against the snapshot of existing
// addon items fetched before the upload.
func DetectDuplicates(rows []Row, existing []upstream.AddonItem) []Match {
	byID := make(map[string]upstream.AddonItem, len(existing))
	byKey := make(map[string]upstream.AddonItem, len(existing))
	for _, item := range existing {
		if item.ID != "" {
			byID[item.ID] = item
		}
		byKey[compositeKey(item.Name, item.CategoryName)] = item
	}

	matches := make([]Match, 0)
	for i, row := range rows {
		if row.ID != "" {
			if item, ok := byID[row.ID]; ok {
				matches = append(matches, Match{RowIndex: i, Line: row.Line, ExistingID: item.ID, MatchedBy: MatchedByID})
				continue
			}
		}
		if item, ok := byKey[compositeKey(row.Name, row.CategoryName)]; ok {
			matches = append(matches, Match{RowIndex: i, Line: row.Line, ExistingID: item.ID, MatchedBy: MatchedByName})
		}
	}
	return matches
}

// BatchItem is one entry of the upstream bulk request; duplicates carry the
// matched ID so the platform updates instead of creating.
type BatchItem struct {
	ID              *string `json:"id,omitempty"`
	AddonCategoryID string  `json:"addonCategoryId"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	InputType       string  `json:"inputType,omitempty"`
	IsActive        bool    `json:"isActive"`
	IsRequired      bool    `json:"isRequired"`
	TrackStock      bool    `json:"trackStock"`
	StockQty        *int    `json:"stockQty,omitempty"`
}

// BuildBatch assembles the submittable set: only rows without blocking
// errors, with duplicate rows rewritten onto their existing IDs. Category
// names are resolved to IDs through the category snapshot.
func BuildBatch(reports []Report, matches []Match, categories []upstream.AddonCategory) []BatchItem {
	categoryIDs := make(map[string]string, len(categories))
	for _, category := range categories {
		categoryIDs[strings.ToLower(strings.TrimSpace(category.Name))] = category.ID
	}
	matchByIndex := make(map[int]Match, len(matches))
	for _, match := range matches {
		matchByIndex[match.RowIndex] = match
	}

	items := make([]BatchItem, 0, len(reports))
	for i, report := range reports {
		if report.HasErrors() {
			continue
		}
		row := report.Row
		item := BatchItem{
			AddonCategoryID: categoryIDs[strings.ToLower(strings.TrimSpace(row.CategoryName))],
			Name:            strings.TrimSpace(row.Name),
			Description:     strings.TrimSpace(row.Description),
			Price:           row.Price,
			InputType:       row.InputType,
			IsActive:        row.IsActive,
			IsRequired:      row.IsRequired,
			TrackStock:      row.TrackStock,
			StockQty:        row.StockQty,
		}
		if match, ok := matchByIndex[i]; ok {
			id := match.ExistingID
			item.ID = &id
		}
		items = append(items, item)
	}
	return items
}
