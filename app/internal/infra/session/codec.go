// Package session holds the session stores: Redis for deployments and an
// in-process map for local runs and tests.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	domcart "example.com/storefront-cart/app/internal/domain/cart"
	domsession "example.com/storefront-cart/app/internal/domain/session"
)

type record struct {
	UserID    int64               `json:"uid,omitempty"`
	Username  string              `json:"username,omitempty"`
	Cart      map[string]int64    `json:"cart,omitempty"`
	Notices   []domsession.Notice `json:"notices,omitempty"`
	ExpiresAt time.Time           `json:"expires_at"`
}

func encode(s *domsession.Session) ([]byte, error) {
	data, err := json.Marshal(record{
		UserID:    s.UserID,
		Username:  s.Username,
		Cart:      s.Cart,
		Notices:   s.Notices,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func decode(id string, data []byte) (*domsession.Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	var c domcart.Cart
	if rec.Cart != nil {
		c = domcart.Cart(rec.Cart)
	}
	return &domsession.Session{
		ID:        id,
		UserID:    rec.UserID,
		Username:  rec.Username,
		Cart:      c,
		Notices:   rec.Notices,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}
