package notification

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("notifier is not configured")

type Message struct {
	Subject string
	Body    string
	From    string
	To      []string
}

// Outcome records whether a best-effort notification went out.
type Outcome int

const (
	OutcomeSent Outcome = iota + 1
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
