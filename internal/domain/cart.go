package domain

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// DefaultCartKey is the store key the cart record lives under.
const DefaultCartKey = "GOMARKETPLACE@CARTPRODUCTS"

var (
	ErrCartNotProvisioned = errors.New("cart manager used outside an initialized CartProvider scope")
	ErrAlreadyInitialized = errors.New("cart manager already initialized")
	ErrMalformedCart      = errors.New("malformed cart record")
	ErrInvalidProduct     = errors.New("product id is required")
)

// Product is an add-to-cart candidate: a cart line without a quantity.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// CartItem is one product line in the cart.
type CartItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is the ordered collection of items, in order of first add.
type Cart []CartItem

// Index returns the position of the item with the given id, or -1.
func (c Cart) Index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// TotalQuantity sums the quantities of every line.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, item := range c {
		total += item.Quantity
	}
	return total
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// WithProduct returns the cart after adding p. A product already in the
// cart leaves the cart unchanged.
func (c Cart) WithProduct(p Product) (Cart, bool) {
	if c.Index(p.ID) >= 0 {
		return c, false
	}
	next := make(Cart, len(c), len(c)+1)
	copy(next, c)
	next = append(next, CartItem{
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: p.ImageURL,
		Price:    p.Price,
		Quantity: 1,
	})
	return next, true
}

// Incremented returns the cart with the quantity of id raised by one.
func (c Cart) Incremented(id string) (Cart, bool) {
	i := c.Index(id)
	if i < 0 {
		return c, false
	}
	next := c.Clone()
	next[i].Quantity++
	return next, true
}

// Decremented returns the cart with the quantity of id lowered by one.
// An item that reaches zero is dropped; the others keep their position.
func (c Cart) Decremented(id string) (Cart, bool) {
	i := c.Index(id)
	if i < 0 {
		return c, false
	}
	if c[i].Quantity > 1 {
		next := c.Clone()
		next[i].Quantity--
		return next, true
	}
	next := make(Cart, 0, len(c)-1)
	next = append(next, c[:i]...)
	next = append(next, c[i+1:]...)
	return next, true
}

// Validate checks the invariants every stored or in-memory cart holds.
func (c Cart) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, item := range c {
		if item.ID == "" {
			return fmt.Errorf("item %d: empty id", i)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("item %d: duplicate id %q", i, item.ID)
		}
		seen[item.ID] = struct{}{}
		if item.Quantity < 1 {
			return fmt.Errorf("item %q: quantity %d below 1", item.ID, item.Quantity)
		}
	}
	return nil
}

// EncodeCart serializes the cart into its stored text form.
func EncodeCart(c Cart) (string, error) {
	if c == nil {
		c = Cart{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(b), nil
}

// DecodeCart parses a stored cart record. Lines with quantity 0 are
// dropped, since older writers left them behind after removing an item.
// Any other parse or invariant failure wraps ErrMalformedCart.
func DecodeCart(raw string) (Cart, error) {
	var decoded Cart
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	c := make(Cart, 0, len(decoded))
	for _, item := range decoded {
		if item.Quantity == 0 {
			continue
		}
		c = append(c, item)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	return c, nil
}
