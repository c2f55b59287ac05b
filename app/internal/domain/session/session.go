package session

import (
	"time"

	domcart "example.com/storefront-cart/app/internal/domain/cart"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Session is the per-visitor state passed explicitly to cart operations.
// Every mutation sets Modified so the transport layer knows to persist it.
type Session struct {
	ID        string
	UserID    int64
	Username  string
	Cart      domcart.Cart
	Notices   []Notice
	ExpiresAt time.Time

	Modified bool
	IsNew    bool
}

func New(id string, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		ExpiresAt: time.Now().Add(ttl),
		IsNew:     true,
	}
}

// CartOrInit returns the session cart, creating an empty one on first access.
func (s *Session) CartOrInit() domcart.Cart {
	if s.Cart == nil {
		s.Cart = domcart.Cart{}
	}
	return s.Cart
}

func (s *Session) SetCart(c domcart.Cart) {
	s.Cart = c
	s.Modified = true
}

func (s *Session) Notify(level Level, message string) {
	s.Notices = append(s.Notices, Notice{Level: level, Message: message})
	s.Modified = true
}

// TakeNotices returns pending notices and clears them.
func (s *Session) TakeNotices() []Notice {
	if len(s.Notices) == 0 {
		return []Notice{}
	}
	out := s.Notices
	s.Notices = nil
	s.Modified = true
	return out
}

func (s *Session) Authenticate(userID int64, username string) {
	s.UserID = userID
	s.Username = username
	s.Modified = true
}

func (s *Session) IsAuthenticated() bool {
	return s.UserID > 0
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
