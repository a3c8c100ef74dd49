package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/listview"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

// DriversList serves the delivery driver roster. Inactive drivers are
// hidden unless the page asks for them.
func (h *Handler) DriversList(w http.ResponseWriter, r *http.Request) {
	params := listview.ParseParams(r.URL.Query())
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	var drivers []upstream.Driver
	if err := h.Queries.Get(r.Context(), "/api/merchant/drivers", authToken(r), &drivers); err != nil {
		writeUpstreamError(w, err)
		return
	}

	filtered := listview.Apply(drivers,
		func(d upstream.Driver) []string {
			phone := ""
			if d.Phone != nil {
				phone = *d.Phone
			}
			return []string{d.Name, d.Email, phone}
		},
		func(d upstream.Driver) map[string]string {
			return map[string]string{}
		},
		listview.Params{Search: params.Search},
	)

	visible := make([]upstream.Driver, 0, len(filtered))
	for _, d := range filtered {
		if !d.IsActive && !includeInactive {
			continue
		}
		visible = append(visible, d)
	}
	response.Success(w, map[string]any{"drivers": visible, "searchScope": "page"})
}

type driverGrantRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DriverGrant registers a new driver by email. The platform decides
// whether the email belongs to an existing account or sends an invite.
func (h *Handler) DriverGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body driverGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || !strings.Contains(body.Email, "@") {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "A valid email is required")
		return
	}

	var driver upstream.Driver
	if err := h.Upstream.Do(ctx, http.MethodPost, "/api/merchant/drivers", authToken(r), body, &driver); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/merchant/drivers")
	response.Success(w, map[string]any{"driver": driver})
}

type driverToggleRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *Handler) DriverToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID := readPathString(r, "id")

	var body driverToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var driver upstream.Driver
	if err := h.Upstream.Do(ctx, http.MethodPatch, "/api/merchant/drivers/"+driverID, authToken(r), body, &driver); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/merchant/drivers")
	response.Success(w, map[string]any{"driver": driver})
}

func (h *Handler) DriverRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID := readPathString(r, "id")

	if err := h.Upstream.Do(ctx, http.MethodDelete, "/api/merchant/drivers/"+driverID, authToken(r), nil, nil); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/merchant/drivers")
	response.Success(w, map[string]any{"revoked": true})
}
