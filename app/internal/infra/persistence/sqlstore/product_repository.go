package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	domproduct "example.com/storefront-cart/app/internal/domain/product"
)

const productColumns = `id, name, description, price, stock, category_id, is_active`

type ProductRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewProductRepository(db *sql.DB, dialect Dialect) *ProductRepository {
	return &ProductRepository{db: db, dialect: dialect}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domproduct.Product, error) {
	var p domproduct.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.IsActive); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`
        SELECT `+productColumns+`
        FROM products WHERE id = ?
    `), id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) GetPurchasable(ctx context.Context, id int64) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`
        SELECT `+productColumns+`
        FROM products WHERE id = ? AND is_active = ? AND stock > 0
    `), id, true)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var clauses []string
	var args []any

	if filter.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Search != "" {
		clauses = append(clauses, "name LIKE ?")
		args = append(args, fmt.Sprintf("%%%s%%", filter.Search))
	}
	if filter.OnlyActive {
		clauses = append(clauses, "is_active = ?")
		args = append(args, true)
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"

	return r.query(ctx, query, args...)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	if len(ids) == 0 {
		return []*domproduct.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx, query, args...)
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...any) ([]*domproduct.Product, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domproduct.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// DecrementStock locks each row, re-checks stock and writes the new value in
// one transaction. Any shortfall rolls everything back with a
// *StockConflictError.
func (r *ProductRepository) DecrementStock(ctx context.Context, changes []domproduct.StockChange) (retErr error) {
	if len(changes) == 0 {
		return nil
	}
	// Stable lock order across concurrent checkouts.
	ordered := slices.Clone(changes)
	slices.SortFunc(ordered, func(a, b domproduct.StockChange) int {
		switch {
		case a.ProductID < b.ProductID:
			return -1
		case a.ProductID > b.ProductID:
			return 1
		default:
			return 0
		}
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stock tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	selectQuery := r.dialect.rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ?` + r.dialect.lockClause())
	updateQuery := r.dialect.rebind(`UPDATE products SET stock = ?, is_active = ? WHERE id = ? AND stock = ?`)

	for _, ch := range ordered {
		if ch.Quantity <= 0 {
			return domproduct.ErrInvalidQuantity
		}

		p, err := scanProduct(tx.QueryRowContext(ctx, selectQuery, ch.ProductID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &domproduct.StockConflictError{ProductID: ch.ProductID, Requested: ch.Quantity}
			}
			return err
		}

		previous := p.Stock
		if err := p.DecrementStock(ch.Quantity); err != nil {
			if errors.Is(err, domproduct.ErrInsufficientStock) {
				return &domproduct.StockConflictError{ProductID: p.ID, Requested: ch.Quantity, Available: previous}
			}
			return err
		}

		res, err := tx.ExecContext(ctx, updateQuery, p.Stock, p.IsActive, p.ID, previous)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &domproduct.StockConflictError{ProductID: p.ID, Requested: ch.Quantity, Available: previous}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stock tx: %w", err)
	}
	return nil
}
