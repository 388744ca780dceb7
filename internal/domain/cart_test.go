package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleProduct(id string) Product {
	return Product{ID: id, Title: "T", ImageURL: "u", Price: 10}
}

func TestCartWithProduct(t *testing.T) {
	t.Run("appends with quantity 1", func(t *testing.T) {
		c, changed := Cart{}.WithProduct(sampleProduct("a"))
		require.True(t, changed)
		require.Equal(t, Cart{{ID: "a", Title: "T", ImageURL: "u", Price: 10, Quantity: 1}}, c)
	})

	t.Run("duplicate id is a no-op", func(t *testing.T) {
		start := Cart{{ID: "a", Quantity: 4}}
		c, changed := start.WithProduct(sampleProduct("a"))
		require.False(t, changed)
		require.Equal(t, 4, c[0].Quantity)
		require.Len(t, c, 1)
	})

	t.Run("does not alias the receiver", func(t *testing.T) {
		start := make(Cart, 1, 8)
		start[0] = CartItem{ID: "a", Quantity: 1}
		next, _ := start.WithProduct(sampleProduct("b"))
		next[0].Quantity = 99
		require.Equal(t, 1, start[0].Quantity)
	})
}

func TestCartIncremented(t *testing.T) {
	start := Cart{{ID: "a", Quantity: 1}, {ID: "b", Quantity: 2}}

	next, changed := start.Incremented("b")
	require.True(t, changed)
	require.Equal(t, 3, next[1].Quantity)
	require.Equal(t, 1, next[0].Quantity)
	require.Equal(t, 2, start[1].Quantity, "receiver must stay untouched")

	same, changed := start.Incremented("missing")
	require.False(t, changed)
	require.Equal(t, start, same)
}

func TestCartDecremented(t *testing.T) {
	t.Run("lowers quantity in place", func(t *testing.T) {
		start := Cart{{ID: "a", Quantity: 3}, {ID: "b", Quantity: 1}}
		next, changed := start.Decremented("a")
		require.True(t, changed)
		require.Equal(t, Cart{{ID: "a", Quantity: 2}, {ID: "b", Quantity: 1}}, next)
	})

	t.Run("removes at zero and keeps order", func(t *testing.T) {
		start := Cart{{ID: "a", Quantity: 1}, {ID: "b", Quantity: 1}, {ID: "c", Quantity: 2}}
		next, changed := start.Decremented("b")
		require.True(t, changed)
		require.Equal(t, Cart{{ID: "a", Quantity: 1}, {ID: "c", Quantity: 2}}, next)
		require.Len(t, start, 3)
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		start := Cart{{ID: "a", Quantity: 1}}
		next, changed := start.Decremented("zzz")
		require.False(t, changed)
		require.Equal(t, start, next)
	})
}

func TestDecodeCart(t *testing.T) {
	t.Run("round trip keeps field names", func(t *testing.T) {
		raw, err := EncodeCart(Cart{{ID: "x", Title: "Shoe", ImageURL: "http://img", Price: 9.5, Quantity: 3}})
		require.NoError(t, err)
		require.JSONEq(t, `[{"id":"x","title":"Shoe","image_url":"http://img","price":9.5,"quantity":3}]`, raw)

		c, err := DecodeCart(raw)
		require.NoError(t, err)
		require.Equal(t, 3, c[0].Quantity)
	})

	t.Run("empty cart encodes as empty array", func(t *testing.T) {
		raw, err := EncodeCart(nil)
		require.NoError(t, err)
		require.Equal(t, "[]", raw)
	})

	t.Run("null decodes to empty cart", func(t *testing.T) {
		c, err := DecodeCart("null")
		require.NoError(t, err)
		require.NotNil(t, c)
		require.Empty(t, c)
	})

	t.Run("zero-quantity lines from older records are dropped", func(t *testing.T) {
		raw := `[{"id":"a","title":"T","image_url":"u","price":10,"quantity":0},` +
			`{"id":"b","title":"T","image_url":"u","price":10,"quantity":2}]`
		c, err := DecodeCart(raw)
		require.NoError(t, err)
		require.Equal(t, Cart{{ID: "b", Title: "T", ImageURL: "u", Price: 10, Quantity: 2}}, c)
	})

	cases := map[string]string{
		"not json":          `{{{`,
		"wrong shape":       `{"id":"x"}`,
		"duplicate id":      `[{"id":"x","quantity":1},{"id":"x","quantity":2}]`,
		"negative quantity": `[{"id":"x","quantity":-1}]`,
		"missing id":        `[{"title":"no id","quantity":1}]`,
		"string price":      `[{"id":"x","price":"ten","quantity":1}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCart(raw)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrMalformedCart), "got %v", err)
		})
	}
}
