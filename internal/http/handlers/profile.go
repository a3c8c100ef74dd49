package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

func (h *Handler) ProfileGet(w http.ResponseWriter, r *http.Request) {
	var profile upstream.Profile
	if err := h.Queries.Get(r.Context(), "/api/merchant/profile", authToken(r), &profile); err != nil {
		writeUpstreamError(w, err)
		return
	}
	response.Success(w, profile)
}

// ProfileUpdate forwards the settings form as-is. Fee toggles changed here
// affect the next cart totals computation through the refetched profile.
func (h *Handler) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var profile upstream.Profile
	if err := h.Upstream.Do(ctx, http.MethodPut, "/api/merchant/profile", authToken(r), body, &profile); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/merchant/profile")
	h.Queries.Mutate("/api/public/merchants/" + profile.Code)
	response.Success(w, profile)
}
