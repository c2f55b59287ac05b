package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domcart "example.com/storefront-cart/app/internal/domain/cart"
	domnotify "example.com/storefront-cart/app/internal/domain/notification"
	domproduct "example.com/storefront-cart/app/internal/domain/product"
	domsession "example.com/storefront-cart/app/internal/domain/session"
)

const (
	MsgEmptyCart          = "Your cart is empty."
	MsgPurchaseNotified   = "Purchase completed. A notification email has been sent."
	MsgPurchaseNotifyFail = "Purchase completed. (The email could not be sent, check the email settings.)"
)

func MsgInsufficientStock(name string) string {
	return fmt.Sprintf("Not enough stock for %s.", name)
}

type ProductRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error)
	DecrementStock(ctx context.Context, changes []domproduct.StockChange) error
}

// InsufficientStockError names the first cart item whose quantity exceeds
// the available stock.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return domproduct.ErrInsufficientStock
}

type Status int

const (
	StatusEmpty Status = iota + 1
	StatusCompleted
)

type Purchaser struct {
	UserID   int64
	Username string
}

type Result struct {
	Status       Status
	Lines        []domcart.Line
	Notification domnotify.Outcome
}

type Config struct {
	StoreName string
	From      string
	To        []string
}

type Service struct {
	productRepo ProductRepository
	notifier    domnotify.Notifier
	cfg         Config
	logger      *zap.Logger
}

func NewService(productRepo ProductRepository, notifier domnotify.Notifier, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.To) == 0 && cfg.From != "" {
		cfg.To = []string{cfg.From}
	}
	return &Service{
		productRepo: productRepo,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

// Checkout validates every cart line against current stock before touching
// any of it, then decrements stock, notifies, and empties the cart.
func (s *Service) Checkout(ctx context.Context, sess *domsession.Session, buyer Purchaser) (*Result, error) {
	c := sess.CartOrInit()
	if c.IsEmpty() {
		sess.Notify(domsession.LevelInfo, MsgEmptyCart)
		return &Result{Status: StatusEmpty}, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}

	view := domcart.BuildView(c, products)
	if err := validateStock(view.Lines); err != nil {
		var short *InsufficientStockError
		if errors.As(err, &short) {
			sess.Notify(domsession.LevelError, MsgInsufficientStock(short.ProductName))
		}
		return nil, err
	}

	changes := make([]domproduct.StockChange, 0, len(view.Lines))
	for _, line := range view.Lines {
		changes = append(changes, domproduct.StockChange{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	if err := s.productRepo.DecrementStock(ctx, changes); err != nil {
		var conflict *domproduct.StockConflictError
		if errors.As(err, &conflict) {
			name := productName(view.Lines, conflict.ProductID)
			s.logger.Warn("stock changed between validation and decrement",
				zap.Int64("product_id", conflict.ProductID),
				zap.Int64("requested", conflict.Requested),
				zap.Int64("available", conflict.Available))
			sess.Notify(domsession.LevelError, MsgInsufficientStock(name))
		}
		return nil, err
	}

	outcome := s.notify(ctx, buyer, view.Lines)
	if outcome == domnotify.OutcomeSent {
		sess.Notify(domsession.LevelSuccess, MsgPurchaseNotified)
	} else {
		sess.Notify(domsession.LevelSuccess, MsgPurchaseNotifyFail)
	}

	sess.SetCart(domcart.Cart{})

	s.logger.Info("checkout completed",
		zap.Int64("user_id", buyer.UserID),
		zap.Int("lines", len(view.Lines)),
		zap.Float64("total", view.Total),
		zap.Stringer("notification", outcome))

	return &Result{
		Status:       StatusCompleted,
		Lines:        view.Lines,
		Notification: outcome,
	}, nil
}

func validateStock(lines []domcart.Line) error {
	for _, line := range lines {
		if line.Product.Stock < line.Quantity {
			return &InsufficientStockError{
				ProductID:   line.Product.ID,
				ProductName: line.Product.Name,
				Requested:   line.Quantity,
				Available:   line.Product.Stock,
			}
		}
	}
	return nil
}

// notify never fails the checkout; the outcome only picks the wording.
func (s *Service) notify(ctx context.Context, buyer Purchaser, lines []domcart.Line) domnotify.Outcome {
	if s.notifier == nil {
		return domnotify.OutcomeFailed
	}
	msg := domnotify.Message{
		Subject: PurchaseSubject(s.cfg.StoreName),
		Body:    PurchaseBody(buyer.Username, lines),
		From:    s.cfg.From,
		To:      s.cfg.To,
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("purchase notification failed", zap.Int64("user_id", buyer.UserID), zap.Error(err))
		return domnotify.OutcomeFailed
	}
	return domnotify.OutcomeSent
}

func PurchaseSubject(storeName string) string {
	if storeName == "" {
		return "New purchase"
	}
	return "New purchase at " + storeName
}

func PurchaseBody(username string, lines []domcart.Line) string {
	parts := []string{
		"Customer: " + username,
		"",
		"Purchased products:",
	}
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("- %s x %d", line.Product.Name, line.Quantity))
	}
	return strings.Join(parts, "\n")
}

func productName(lines []domcart.Line, id int64) string {
	for _, line := range lines {
		if line.Product.ID == id {
			return line.Product.Name
		}
	}
	return fmt.Sprintf("product %d", id)
}
