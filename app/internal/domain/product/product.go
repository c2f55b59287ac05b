package product

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Stock       int64
	CategoryID  int64
	IsActive    bool
}

// Purchasable reports whether the product can be put in a cart.
func (p *Product) Purchasable() bool {
	return p.IsActive && p.Stock > 0
}

// DecrementStock takes qty units out of stock. A product whose stock reaches
// zero is deactivated.
func (p *Product) DecrementStock(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	if p.Stock == 0 {
		p.IsActive = false
	}
	return nil
}

type StockChange struct {
	ProductID int64
	Quantity  int64
}

type ListFilter struct {
	CategoryID *int64
	Search     string
	OnlyActive bool
}
