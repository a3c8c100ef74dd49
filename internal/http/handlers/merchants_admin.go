package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/listview"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

// MerchantsList serves the admin merchant table. Pagination and the
// active filter are forwarded upstream; search narrows the fetched page.
func (h *Handler) MerchantsList(w http.ResponseWriter, r *http.Request) {
	params := listview.ParseParamsWithReset(r.URL.Query(), "isActive", "country")

	query := url.Values{}
	query.Set("limit", strconv.Itoa(params.Limit))
	query.Set("offset", strconv.Itoa(params.Offset))
	for key, value := range params.Filters {
		query.Set(key, value)
	}

	var page upstream.MerchantsPage
	if err := h.Queries.Get(r.Context(), "/api/admin/merchants?"+query.Encode(), authToken(r), &page); err != nil {
		writeUpstreamError(w, err)
		return
	}

	merchants := listview.Apply(page.Merchants,
		func(m upstream.Merchant) []string {
			return []string{m.Name, m.Code, m.Email}
		},
		func(m upstream.Merchant) map[string]string {
			return map[string]string{}
		},
		listview.Params{Search: params.Search},
	)

	response.Success(w, map[string]any{
		"merchants": merchants,
		"pagination": listview.Page{
			Total:   page.Pagination.Total,
			Limit:   page.Pagination.Limit,
			Offset:  page.Pagination.Offset,
			HasMore: page.Pagination.HasMore,
		},
		"searchScope": "page",
	})
}

func (h *Handler) MerchantDetail(w http.ResponseWriter, r *http.Request) {
	merchantID := readPathString(r, "id")

	var detail map[string]any
	if err := h.Queries.Get(r.Context(), "/api/admin/merchants/"+merchantID, authToken(r), &detail); err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, detail)
}

type merchantUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Country  *string `json:"country,omitempty"`
	Currency *string `json:"currency,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// MerchantUpdate forwards the edit form. Deactivation travels the same
// path as any other field change; the platform enforces the consequences.
func (h *Handler) MerchantUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID := readPathString(r, "id")

	var body merchantUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name cannot be empty")
		return
	}

	var updated map[string]any
	if err := h.Upstream.Do(ctx, http.MethodPut, "/api/admin/merchants/"+merchantID, authToken(r), body, &updated); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/admin/merchants")
	response.Success(w, updated)
}

func (h *Handler) MerchantDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID := readPathString(r, "id")

	if err := h.Upstream.Do(ctx, http.MethodDelete, "/api/admin/merchants/"+merchantID, authToken(r), nil, nil); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/admin/merchants")
	response.Success(w, map[string]any{"deleted": true})
}
