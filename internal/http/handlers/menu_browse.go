package handlers

import (
	"net/http"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/listview"
	"github.com/mygads/genfity-order-main-sub002/internal/money"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

// MenuBrowse serves the customer menu page: the merchant's catalog with
// page-local search and category filter applied over the cached fetch.
func (h *Handler) MenuBrowse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantCode := readPathString(r, "code")
	if strings.TrimSpace(merchantCode) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Merchant code is required")
		return
	}

	var menu upstream.Menu
	if err := h.Queries.Get(ctx, "/api/public/menu/"+merchantCode, "", &menu); err != nil {
		writeUpstreamError(w, err)
		return
	}

	params := listview.ParseParamsWithReset(r.URL.Query(), "categoryId")
	items := listview.Apply(menu.Items,
		func(item upstream.MenuItem) []string {
			return []string{item.Name, item.Description}
		},
		func(item upstream.MenuItem) map[string]string {
			return map[string]string{"categoryId": item.CategoryID}
		},
		params,
	)

	visible := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		visible = append(visible, map[string]any{
			"id":           item.ID,
			"name":         item.Name,
			"description":  item.Description,
			"price":        item.Price,
			"displayPrice": money.Format(item.Price, menu.Merchant.Currency),
			"imageUrl":     item.ImageURL,
			"categoryId":   item.CategoryID,
			"inStock":      item.InStock,
		})
	}

	response.Success(w, map[string]any{
		"merchant":    menu.Merchant,
		"categories":  menu.Categories,
		"items":       visible,
		"searchScope": "page",
	})
}

// MenuItemDetail proxies a single menu item with its addon categories for
// the add-to-cart sheet.
func (h *Handler) MenuItemDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantCode := readPathString(r, "code")
	menuID := readPathString(r, "id")

	var detail map[string]any
	if err := h.Queries.Get(ctx, "/api/public/merchants/"+merchantCode+"/menus/"+menuID, "", &detail); err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, detail)
}
