package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists one row per cart key with the lines as JSONB. It is
// the durable analog of the browser-local cart: a device's cart survives
// reloads and gateway restarts.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Initialize(ctx context.Context, key Key) (*Cart, error) {
	existing, err := s.load(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	created := &Cart{
		DeviceID:     key.DeviceID,
		MerchantCode: key.MerchantCode,
		Mode:         key.Mode,
		Items:        []Item{},
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.save(ctx, key, created); err != nil {
		return nil, err
	}
	return created.clone(), nil
}

func (s *PostgresStore) Get(ctx context.Context, key Key) (*Cart, error) {
	return s.Initialize(ctx, key)
}

func (s *PostgresStore) AddItem(ctx context.Context, key Key, item Item) (*Cart, error) {
	return s.mutate(ctx, key, func(current *Cart) {
		item.ID = newLineID()
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		current.Items = append(current.Items, item)
	})
}

func (s *PostgresStore) UpdateItem(ctx context.Context, key Key, itemID string, patch ItemPatch) (*Cart, error) {
	return s.mutate(ctx, key, func(current *Cart) {
		for i := range current.Items {
			if current.Items[i].ID != itemID {
				continue
			}
			applyPatch(&current.Items[i], patch)
			if current.Items[i].Quantity <= 0 {
				current.Items = append(current.Items[:i], current.Items[i+1:]...)
			}
			return
		}
	})
}

func (s *PostgresStore) RemoveItem(ctx context.Context, key Key, itemID string) (*Cart, error) {
	return s.mutate(ctx, key, func(current *Cart) {
		for i := range current.Items {
			if current.Items[i].ID == itemID {
				current.Items = append(current.Items[:i], current.Items[i+1:]...)
				return
			}
		}
	})
}

func (s *PostgresStore) SetTableNumber(ctx context.Context, key Key, tableNumber string) (*Cart, error) {
	return s.mutate(ctx, key, func(current *Cart) {
		current.TableNumber = tableNumber
	})
}

func (s *PostgresStore) Clear(ctx context.Context, key Key) error {
	_, err := s.db.Exec(ctx, `
        delete from storefront_carts
        where device_id = $1 and merchant_code = $2 and order_mode = $3
    `, key.DeviceID, key.MerchantCode, key.Mode)
	return err
}

func (s *PostgresStore) mutate(ctx context.Context, key Key, apply func(*Cart)) (*Cart, error) {
	current, err := s.Initialize(ctx, key)
	if err != nil {
		return nil, err
	}
	apply(current)
	current.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, key, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *PostgresStore) load(ctx context.Context, key Key) (*Cart, error) {
	var (
		tableNumber string
		itemsJSON   []byte
		updatedAt   time.Time
	)
	err := s.db.QueryRow(ctx, `
        select coalesce(table_number, ''), items, updated_at
        from storefront_carts
        where device_id = $1 and merchant_code = $2 and order_mode = $3
    `, key.DeviceID, key.MerchantCode, key.Mode).Scan(&tableNumber, &itemsJSON, &updatedAt)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return nil, err
		}
	}
	return &Cart{
		DeviceID:     key.DeviceID,
		MerchantCode: key.MerchantCode,
		Mode:         key.Mode,
		TableNumber:  tableNumber,
		Items:        items,
		UpdatedAt:    updatedAt,
	}, nil
}

func (s *PostgresStore) save(ctx context.Context, key Key, current *Cart) error {
	itemsJSON, err := json.Marshal(current.Items)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        insert into storefront_carts (device_id, merchant_code, order_mode, table_number, items, updated_at)
        values ($1, $2, $3, nullif($4, ''), $5, $6)
        on conflict (device_id, merchant_code, order_mode)
        do update set table_number = excluded.table_number, items = excluded.items, updated_at = excluded.updated_at
    `, key.DeviceID, key.MerchantCode, key.Mode, current.TableNumber, itemsJSON, current.UpdatedAt)
	return err
}
