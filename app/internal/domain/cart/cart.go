package cart

import (
	"slices"
	"strconv"

	domproduct "example.com/storefront-cart/app/internal/domain/product"
)

// Cart maps an item identifier (decimal form of the product id) to the
// requested quantity.
type Cart map[string]int64

func Key(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

func (c Cart) Add(productID int64) int64 {
	key := Key(productID)
	c[key]++
	return c[key]
}

// Remove deletes the entry entirely and reports whether it was present.
func (c Cart) Remove(productID int64) bool {
	key := Key(productID)
	if _, ok := c[key]; !ok {
		return false
	}
	delete(c, key)
	return true
}

func (c Cart) Quantity(productID int64) int64 {
	return c[Key(productID)]
}

func (c Cart) Len() int {
	return len(c)
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// ProductIDs returns the identifiers in ascending order. Keys that are not
// valid ids are skipped.
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c))
	for key := range c {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

type Line struct {
	Product  *domproduct.Product
	Quantity int64
	Subtotal float64
}

type View struct {
	Lines []Line
	Total float64
}

// BuildView joins the cart with the loaded products. Products are expected in
// the order the catalog returned them; cart entries with no product produce
// no line.
func BuildView(c Cart, products []*domproduct.Product) *View {
	view := &View{Lines: make([]Line, 0, len(products))}
	for _, p := range products {
		qty, ok := c[Key(p.ID)]
		if !ok {
			continue
		}
		subtotal := p.Price * float64(qty)
		view.Total += subtotal
		view.Lines = append(view.Lines, Line{
			Product:  p,
			Quantity: qty,
			Subtotal: subtotal,
		})
	}
	return view
}
