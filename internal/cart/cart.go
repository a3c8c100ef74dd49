package cart

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

const (
	ModeDineIn   = "dinein"
	ModeTakeaway = "takeaway"
	ModeDelivery = "delivery"
)

var ErrInvalidMode = errors.New("invalid order mode")

// Addon is a priced modifier attached to a cart line.
type Addon struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Item is one line in a cart. Every add produces a fresh line with its own
// ID, even for the same menu and addon selection; edits re-target a line by
// its ID instead of merging.
type Item struct {
	ID        string  `json:"cartItemId"`
	MenuID    string  `json:"menuId"`
	MenuName  string  `json:"menuName"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Addons    []Addon `json:"addons,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// Cart holds the pre-checkout selection for one device on one merchant and
// order mode. Switching merchant or mode addresses a different key, so all
// items always share the cart's merchant and mode.
type Cart struct {
	DeviceID     string    `json:"deviceId"`
	MerchantCode string    `json:"merchantCode"`
	Mode         string    `json:"mode"`
	TableNumber  string    `json:"tableNumber,omitempty"`
	Items        []Item    `json:"items"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) clone() *Cart {
	out := *c
	out.Items = make([]Item, len(c.Items))
	for i, item := range c.Items {
		out.Items[i] = item
		if len(item.Addons) > 0 {
			out.Items[i].Addons = append([]Addon(nil), item.Addons...)
		}
	}
	return &out
}

// Key addresses one cart. A device holds at most one cart per
// (merchantCode, mode) pair.
type Key struct {
	DeviceID     string
	MerchantCode string
	Mode         string
}

func NewKey(deviceID, merchantCode, mode string) (Key, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case ModeDineIn, ModeTakeaway, ModeDelivery:
	default:
		return Key{}, ErrInvalidMode
	}
	return Key{
		DeviceID:     strings.TrimSpace(deviceID),
		MerchantCode: strings.TrimSpace(merchantCode),
		Mode:         mode,
	}, nil
}

// ItemPatch carries the fields an update may change. Nil fields are left
// untouched.
type ItemPatch struct {
	Quantity *int     `json:"quantity,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Addons   *[]Addon `json:"addons,omitempty"`
}

// Store is the injected cart state shared by the storefront pages. Every
// mutation persists before returning; reads return defensive copies.
type Store interface {
	// Initialize loads the persisted cart for the key or creates an empty
	// one. Calling it again for the same key is a no-op.
	Initialize(ctx context.Context, key Key) (*Cart, error)
	Get(ctx context.Context, key Key) (*Cart, error)
	// AddItem appends the item under a freshly generated line ID and returns
	// the updated cart.
	AddItem(ctx context.Context, key Key, item Item) (*Cart, error)
	// UpdateItem merges the patch into the matching line. An unknown line ID
	// is a silent no-op.
	UpdateItem(ctx context.Context, key Key, itemID string, patch ItemPatch) (*Cart, error)
	// RemoveItem drops the matching line; removing an absent line is a
	// no-op. A quantity patched to zero removes the line as well.
	RemoveItem(ctx context.Context, key Key, itemID string) (*Cart, error)
	SetTableNumber(ctx context.Context, key Key, tableNumber string) (*Cart, error)
	Clear(ctx context.Context, key Key) error
}

func newLineID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "line-" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return "line-" + hex.EncodeToString(buf)
}

func applyPatch(item *Item, patch ItemPatch) {
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Notes != nil {
		item.Notes = *patch.Notes
	}
	if patch.Addons != nil {
		item.Addons = append([]Addon(nil), (*patch.Addons)...)
	}
}
