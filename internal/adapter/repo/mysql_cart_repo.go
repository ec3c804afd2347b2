package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
)

// MySQLCartRepo stores the cart as one row in cart_snapshots:
//
//	CREATE TABLE cart_snapshots (
//	    cart_key   VARCHAR(64) PRIMARY KEY,
//	    payload    JSON NOT NULL,
//	    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
//	);
type MySQLCartRepo struct {
	db  *sql.DB
	key string
}

func NewMySQLCartRepo(db *sql.DB, key string) *MySQLCartRepo {
	if key == "" {
		key = "cart:items"
	}
	return &MySQLCartRepo{db: db, key: key}
}

func (r *MySQLCartRepo) Load(ctx context.Context) ([]domain.CartLine, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT payload FROM cart_snapshots WHERE cart_key=?`, r.key)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select cart snapshot: %w", err)
	}
	var items []domain.CartLine
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

func (r *MySQLCartRepo) Save(ctx context.Context, items []domain.CartLine) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO cart_snapshots (cart_key, payload) VALUES (?, ?)
ON DUPLICATE KEY UPDATE payload=VALUES(payload)`, r.key, payload)
	if err != nil {
		return fmt.Errorf("upsert cart snapshot: %w", err)
	}
	return nil
}

var _ usecase.CartPersistence = (*MySQLCartRepo)(nil)
