package cart

import (
	"context"

	domcart "example.com/storefront-cart/app/internal/domain/cart"
	domproduct "example.com/storefront-cart/app/internal/domain/product"
	domsession "example.com/storefront-cart/app/internal/domain/session"
)

const (
	MsgAdded   = "Product added to cart."
	MsgRemoved = "Product removed from cart."
)

type ProductRepository interface {
	GetPurchasable(ctx context.Context, id int64) (*domproduct.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error)
}

type Service struct {
	productRepo ProductRepository
}

func NewService(productRepo ProductRepository) *Service {
	return &Service{productRepo: productRepo}
}

// Add puts one more unit of the product in the session cart. Inactive or
// out-of-stock products yield ErrProductNotFound and leave the cart untouched.
func (s *Service) Add(ctx context.Context, sess *domsession.Session, productID int64) error {
	if _, err := s.productRepo.GetPurchasable(ctx, productID); err != nil {
		return err
	}

	sess.CartOrInit().Add(productID)
	sess.Notify(domsession.LevelSuccess, MsgAdded)
	return nil
}

// Remove drops the product from the cart whatever its quantity.
func (s *Service) Remove(ctx context.Context, sess *domsession.Session, productID int64) bool {
	if !sess.CartOrInit().Remove(productID) {
		return false
	}
	sess.Notify(domsession.LevelInfo, MsgRemoved)
	return true
}

func (s *Service) View(ctx context.Context, sess *domsession.Session) (*domcart.View, error) {
	c := sess.CartOrInit()
	ids := c.ProductIDs()
	if len(ids) == 0 {
		return &domcart.View{Lines: []domcart.Line{}}, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return domcart.BuildView(c, products), nil
}
