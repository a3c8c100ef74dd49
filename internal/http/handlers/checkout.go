package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mygads/genfity-order-main-sub002/internal/cart"
	"github.com/mygads/genfity-order-main-sub002/internal/queue"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

type checkoutRequest struct {
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone"`
	CustomerEmail   string  `json:"customerEmail"`
	PaymentMethod   string  `json:"paymentMethod"`
	Notes           string  `json:"notes"`
	DeliveryAddress *string `json:"deliveryAddress,omitempty"`
}

type checkoutItem struct {
	MenuID   string          `json:"menuId"`
	Quantity int             `json:"quantity"`
	Notes    string          `json:"notes,omitempty"`
	Addons   []checkoutAddon `json:"addons,omitempty"`
}

type checkoutAddon struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Checkout hands the cart to the platform as a public order. The cart is
// client-authoritative until this point; on success it is cleared and the
// page receives the platform's order summary.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := cartKey(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "deviceId, merchantCode and mode are required")
		return
	}

	var body checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	current, err := h.Carts.Get(ctx, key)
	if err != nil {
		h.Logger.Error("cart load failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}
	if current.IsEmpty() {
		response.JSON(w, http.StatusBadRequest, map[string]any{
			"success":    false,
			"error":      "CART_EMPTY",
			"message":    "Your cart is empty",
			"redirectTo": orderingRoute(key),
		})
		return
	}
	if key.Mode == cart.ModeDelivery && (body.DeliveryAddress == nil || strings.TrimSpace(*body.DeliveryAddress) == "") {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Delivery address is required")
		return
	}

	items := make([]checkoutItem, 0, len(current.Items))
	for _, line := range current.Items {
		item := checkoutItem{MenuID: line.MenuID, Quantity: line.Quantity, Notes: line.Notes}
		for _, addon := range line.Addons {
			item.Addons = append(item.Addons, checkoutAddon{Name: addon.Name, Price: addon.Price})
		}
		items = append(items, item)
	}

	payload := map[string]any{
		"merchantCode":  key.MerchantCode,
		"orderType":     strings.ToUpper(key.Mode),
		"items":         items,
		"customerName":  strings.TrimSpace(body.CustomerName),
		"customerPhone": strings.TrimSpace(body.CustomerPhone),
		"customerEmail": strings.TrimSpace(body.CustomerEmail),
		"paymentMethod": body.PaymentMethod,
		"notes":         strings.TrimSpace(body.Notes),
	}
	if key.Mode == cart.ModeDineIn && current.TableNumber != "" {
		payload["tableNumber"] = current.TableNumber
	}
	if body.DeliveryAddress != nil {
		payload["deliveryAddress"] = *body.DeliveryAddress
	}

	var order struct {
		OrderNumber string  `json:"orderNumber"`
		Total       float64 `json:"totalAmount"`
		Currency    string  `json:"currency"`
	}
	if err := h.Upstream.Do(ctx, http.MethodPost, "/api/public/orders", "", payload, &order); err != nil {
		writeUpstreamError(w, err)
		return
	}

	if err := h.Carts.Clear(ctx, key); err != nil {
		h.Logger.Warn("cart clear after checkout failed", zapError(err))
	}

	if h.Queue != nil {
		event := queue.OrderSubmittedEvent{
			MerchantCode: key.MerchantCode,
			OrderMode:    key.Mode,
			OrderNumber:  order.OrderNumber,
			DeviceID:     key.DeviceID,
			ItemCount:    len(current.Items),
			Total:        order.Total,
			Currency:     order.Currency,
		}
		if err := h.Queue.PublishOrderSubmitted(ctx, event); err != nil {
			h.Logger.Warn("order submitted publish failed", zapError(err))
		}
	}

	response.Success(w, map[string]any{
		"orderNumber": order.OrderNumber,
		"totalAmount": order.Total,
		"currency":    order.Currency,
	})
}
