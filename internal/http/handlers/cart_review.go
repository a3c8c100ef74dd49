package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/cart"
	"github.com/mygads/genfity-order-main-sub002/internal/money"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

// CartGet renders the cart review screen state: the stored lines, totals
// derived from the merchant's current fee settings, and the co-purchase
// suggestions. An empty cart tells the page to go back to ordering.
func (h *Handler) CartGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := cartKey(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId, merchantCode and mode are required")
		return
	}

	current, err := h.Carts.Get(ctx, key)
	if err != nil {
		h.Logger.Error("cart load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}

	if current.IsEmpty() {
		response.JSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"cart":       current,
				"cartEmpty":  true,
				"redirectTo": orderingRoute(key),
			},
		})
		return
	}

	profile, err := h.merchantProfile(ctx, key.MerchantCode)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	totals := cart.ComputeTotals(current.Items, feeConfigFor(profile, key.Mode))

	var suggestions []upstream.Recommendation
	if err := h.Queries.Get(ctx, "/api/public/merchants/"+key.MerchantCode+"/recommendations", "", &suggestions); err != nil {
		// suggestions are decorative; the review page renders without them
		suggestions = nil
	}

	response.Success(w, map[string]any{
		"cart":        current,
		"cartEmpty":   false,
		"totals":      totals,
		"display":     formatTotals(totals, profile.Currency),
		"suggestions": suggestions,
	})
}

// CartInitialize restores the persisted cart when the ordering page loads.
// Calling it again for the same device/merchant/mode is a no-op.
func (h *Handler) CartInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := cartKey(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId, merchantCode and mode are required")
		return
	}

	current, err := h.Carts.Initialize(ctx, key)
	if err != nil {
		h.Logger.Error("cart initialize failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}
	response.Success(w, map[string]any{"cart": current})
}

type addItemRequest struct {
	MenuID    string       `json:"menuId"`
	MenuName  string       `json:"menuName"`
	UnitPrice float64      `json:"unitPrice"`
	Quantity  int          `json:"quantity"`
	Addons    []cart.Addon `json:"addons"`
	Notes     string       `json:"notes"`
}

func (h *Handler) CartAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := cartKey(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId, merchantCode and mode are required")
		return
	}

	var body addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if strings.TrimSpace(body.MenuID) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "menuId is required")
		return
	}
	if body.UnitPrice < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "unitPrice must be zero or greater")
		return
	}
	for _, addon := range body.Addons {
		if addon.Price < 0 {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Addon %q must have a price of zero or greater", addon.Name))
			return
		}
	}

	updated, err := h.Carts.AddItem(ctx, key, cart.Item{
		MenuID:    body.MenuID,
		MenuName:  body.MenuName,
		UnitPrice: body.UnitPrice,
		Quantity:  body.Quantity,
		Addons:    body.Addons,
		Notes:     body.Notes,
	})
	if err != nil {
		h.Logger.Error("cart add failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cart")
		return
	}
	response.Success(w, map[string]any{"cart": updated})
}

func (h *Handler) CartUpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := cartKey(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId, merchantCode and mode are required")
		return
	}

	var patch cart.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	updated, err := h.Carts.UpdateItem(ctx, key, readPathString(r, "itemId"), patch)
	if err != nil {
		h.Logger.Error("cart update failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cart")
		return
	}
	response.Success(w, map[string]any{"cart": updated})
}

func (h *Handler) CartRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := cartKey(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId, merchantCode and mode are required")
		return
	}

	updated, err := h.Carts.RemoveItem(ctx, key, readPathString(r, "itemId"))
	if err != nil {
		h.Logger.Error("cart remove failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cart")
		return
	}
	response.Success(w, map[string]any{"cart": updated})
}

func (h *Handler) CartSetTableNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := cartKey(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId, merchantCode and mode are required")
		return
	}
	if key.Mode != cart.ModeDineIn {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Table number only applies to dine-in orders")
		return
	}

	var body struct {
		TableNumber string `json:"tableNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	updated, err := h.Carts.SetTableNumber(ctx, key, strings.TrimSpace(body.TableNumber))
	if err != nil {
		h.Logger.Error("cart table number failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cart")
		return
	}
	response.Success(w, map[string]any{"cart": updated})
}

func (h *Handler) merchantProfile(ctx context.Context, merchantCode string) (upstream.Profile, error) {
	var profile upstream.Profile
	err := h.Queries.Get(ctx, "/api/public/merchants/"+merchantCode, "", &profile)
	return profile, err
}

// feeConfigFor narrows the merchant settings to the fees active for the
// order mode: the packaging fee only applies to takeaway.
func feeConfigFor(profile upstream.Profile, mode string) cart.FeeConfig {
	fees := cart.FeeConfig{}
	if profile.EnableTax {
		fees.TaxPercent = profile.TaxPercent
	}
	if profile.EnableServiceCharge {
		fees.ServiceChargePercent = profile.ServiceChargePercent
	}
	if profile.EnablePackagingFee && mode == cart.ModeTakeaway {
		fees.PackagingFeeAmount = profile.PackagingFeeAmount
		fees.PackagingFeeApplies = true
	}
	return fees
}

func formatTotals(totals cart.Totals, currency string) map[string]string {
	return map[string]string{
		"subtotal":      money.Format(totals.Subtotal, currency),
		"tax":           money.Format(totals.Tax, currency),
		"serviceCharge": money.Format(totals.ServiceCharge, currency),
		"packagingFee":  money.Format(totals.PackagingFee, currency),
		"total":         money.Format(totals.Total, currency),
	}
}

func orderingRoute(key cart.Key) string {
	return "/order/" + key.MerchantCode + "?mode=" + key.Mode
}
