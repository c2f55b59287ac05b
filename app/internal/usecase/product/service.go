package product

import (
	"context"

	dom "example.com/storefront-cart/app/internal/domain/product"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*dom.Product, error)
	List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListStorefront lists what shoppers can see: active products only.
func (s *Service) ListStorefront(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	filter.OnlyActive = true
	return s.repo.List(ctx, filter)
}
