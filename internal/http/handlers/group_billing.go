package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/money"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

// GroupBalance serves the owner's cross-merchant balance page: every
// merchant in the group with its own balance and currency.
func (h *Handler) GroupBalance(w http.ResponseWriter, r *http.Request) {
	var group struct {
		Merchants []upstream.GroupMerchant `json:"merchants"`
	}
	if err := h.Queries.Get(r.Context(), "/api/merchant/balance/group", authToken(r), &group); err != nil {
		writeUpstreamError(w, err)
		return
	}

	merchants := make([]map[string]any, 0, len(group.Merchants))
	for _, m := range group.Merchants {
		merchants = append(merchants, map[string]any{
			"id":       m.ID,
			"code":     m.Code,
			"name":     m.Name,
			"balance":  m.Balance,
			"display":  money.Format(m.Balance, m.Currency),
			"currency": m.Currency,
			"isActive": m.IsActive,
		})
	}
	response.Success(w, map[string]any{"merchants": merchants})
}

type transferRequest struct {
	FromMerchantID string  `json:"fromMerchantId"`
	ToMerchantID   string  `json:"toMerchantId"`
	Amount         float64 `json:"amount"`
	Notes          string  `json:"notes"`
}

// GroupTransfer moves balance between two merchants in the owner's group.
// The pair is validated against the group snapshot before anything is sent
// to the platform, so a currency mismatch never leaves this service.
func (h *Handler) GroupTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := authToken(r)

	var body transferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var group struct {
		Merchants []upstream.GroupMerchant `json:"merchants"`
	}
	if err := h.Queries.Get(ctx, "/api/merchant/balance/group", token, &group); err != nil {
		writeUpstreamError(w, err)
		return
	}

	if code, message := validateTransfer(group.Merchants, body.FromMerchantID, body.ToMerchantID, body.Amount); code != "" {
		response.Error(w, http.StatusBadRequest, code, message)
		return
	}

	var result map[string]any
	payload := map[string]any{
		"fromMerchantId": body.FromMerchantID,
		"toMerchantId":   body.ToMerchantID,
		"amount":         body.Amount,
		"notes":          strings.TrimSpace(body.Notes),
	}
	if err := h.Upstream.Do(ctx, http.MethodPost, "/api/merchant/balance/transfer", token, payload, &result); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/merchant/balance")
	h.Queries.Mutate("/api/merchant/balance/group")
	h.Queries.Mutate("/api/merchant/balance/transactions")

	response.Success(w, result)
}

// validateTransfer checks a transfer pair against the group snapshot. It
// returns an error code and message, or empty strings when the transfer
// may proceed.
func validateTransfer(merchants []upstream.GroupMerchant, fromID, toID string, amount float64) (string, string) {
	if strings.TrimSpace(fromID) == "" || strings.TrimSpace(toID) == "" {
		return "VALIDATION_ERROR", "Source and destination merchants are required"
	}
	if fromID == toID {
		return "VALIDATION_ERROR", "Source and destination must be different merchants"
	}
	if amount <= 0 {
		return "VALIDATION_ERROR", "Amount must be greater than zero"
	}

	var from, to *upstream.GroupMerchant
	for i := range merchants {
		switch merchants[i].ID {
		case fromID:
			from = &merchants[i]
		case toID:
			to = &merchants[i]
		}
	}
	if from == nil || to == nil {
		return "MERCHANT_NOT_FOUND", "Merchant is not part of your group"
	}
	if !strings.EqualFold(from.Currency, to.Currency) {
		return "CURRENCY_MISMATCH", "Transfers are only allowed between merchants using the same currency"
	}
	if amount > from.Balance {
		return "VALIDATION_ERROR", "Amount exceeds the source merchant's balance"
	}
	return "", ""
}
