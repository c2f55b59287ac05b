package product

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	// GetPurchasable returns ErrProductNotFound unless the product is active
	// and has stock.
	GetPurchasable(ctx context.Context, id int64) (*Product, error)
	// GetByIDs returns the products that exist, ordered by id.
	GetByIDs(ctx context.Context, ids []int64) ([]*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	// DecrementStock applies all changes atomically or none of them.
	DecrementStock(ctx context.Context, changes []StockChange) error
}
