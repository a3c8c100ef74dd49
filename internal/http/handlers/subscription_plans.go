package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

// PlansList serves the admin subscription plan editor, one row per
// supported currency.
func (h *Handler) PlansList(w http.ResponseWriter, r *http.Request) {
	var plans []upstream.SubscriptionPlan
	if err := h.Queries.Get(r.Context(), "/api/admin/subscription-plans", authToken(r), &plans); err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, map[string]any{"plans": plans})
}

type planUpdateRequest struct {
	DepositMinimum  *float64 `json:"depositMinimum,omitempty"`
	OrderFee        *float64 `json:"orderFee,omitempty"`
	MonthlyPrice    *float64 `json:"monthlyPrice,omitempty"`
	TrialDays       *int     `json:"trialDays,omitempty"`
	GracePeriodDays *int     `json:"gracePeriodDays,omitempty"`
	BankName        *string  `json:"bankName,omitempty"`
	BankAccount     *string  `json:"bankAccount,omitempty"`
	BankAccountName *string  `json:"bankAccountName,omitempty"`
}

func (req planUpdateRequest) validate() string {
	for _, check := range []struct {
		value *float64
		field string
	}{
		{req.DepositMinimum, "depositMinimum"},
		{req.OrderFee, "orderFee"},
		{req.MonthlyPrice, "monthlyPrice"},
	} {
		if check.value != nil && *check.value < 0 {
			return check.field + " must be zero or greater"
		}
	}
	for _, check := range []struct {
		value *int
		field string
	}{
		{req.TrialDays, "trialDays"},
		{req.GracePeriodDays, "gracePeriodDays"},
	} {
		if check.value != nil && *check.value < 0 {
			return check.field + " must be zero or greater"
		}
	}
	if req.BankAccount != nil && strings.TrimSpace(*req.BankAccount) != "" {
		for _, c := range *req.BankAccount {
			if (c < '0' || c > '9') && c != '-' && c != ' ' {
				return "bankAccount may only contain digits, spaces and dashes"
			}
		}
	}
	return ""
}

// PlanUpdate forwards a plan edit. Numbers are validated here so the
// form gets an immediate field error instead of a round trip.
func (h *Handler) PlanUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	planID := readPathString(r, "id")

	var body planUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if message := body.validate(); message != "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", message)
		return
	}

	var plan upstream.SubscriptionPlan
	if err := h.Upstream.Do(ctx, http.MethodPut, "/api/admin/subscription-plans/"+planID, authToken(r), body, &plan); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/admin/subscription-plans")
	response.Success(w, map[string]any{"plan": plan})
}
