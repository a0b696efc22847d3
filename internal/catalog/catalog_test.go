package catalog

import (
	"encoding/json"
	"testing"

	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := map[string]float64{
		"250":        250,
		"1,250 EGP":  1250,
		"EGP 99.50":  99.5,
		" 3.25 ":    3.25,
	}
	for in, want := range cases {
		got, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	for _, in := range []string{"free", "-50", " -1,250 EGP"} {
		_, err := ParsePrice(in)
		assert.Error(t, err, in)
	}
}

func TestPriceUnmarshal(t *testing.T) {
	var v struct{ A, B, C Price }
	require.NoError(t, json.Unmarshal([]byte(`{"A": 120, "B": "1,200 EGP", "C": null}`), &v))
	assert.Equal(t, Price(120), v.A)
	assert.Equal(t, Price(1200), v.B)
	assert.Equal(t, Price(0), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"A": "n/a"}`), &v))
}

func TestDecodeProduct(t *testing.T) {
	p, err := DecodeProduct(store.Record{
		"id": float64(7), "Name": "Socks", "Price": "45 EGP",
		"category": "SOCKS", "ImgUrl": "a.jpg, b.jpg,", "Stock": float64(-3),
	})
	require.NoError(t, err)
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, Price(45), p.Price)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)
	assert.Equal(t, "a.jpg", p.Image())
	assert.Equal(t, 0, p.Stock)

	_, err = DecodeProduct(store.Record{"id": "x", "Price": "n/a"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = DecodeProduct(store.Record{"Name": "no id"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestInputValidate(t *testing.T) {
	rec, err := Input{Name: " Tote ", Price: "300", Category: "bags", ImgUrl: []any{"x.jpg"}, Stock: "4"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Tote", rec["Name"])
	assert.Equal(t, 300.0, rec["Price"])
	assert.Equal(t, "BAGS", rec["category"])
	assert.Equal(t, []string{"x.jpg"}, rec["ImgUrl"])
	assert.Equal(t, 4, rec["Stock"])

	bad := []Input{
		{Name: "", Price: 1, Category: "BAGS"},
		{Name: "x", Price: "abc", Category: "BAGS"},
		{Name: "x", Price: -1, Category: "BAGS"},
		{Name: "x", Price: "-50", Category: "BAGS"},
		{Name: "x", Price: 1, Category: "SHOES"},
		{Name: "x", Price: 1, Category: "BAGS", Stock: -2},
		{Name: "x", Price: 1, Category: "BAGS", Stock: "many"},
	}
	for _, in := range bad {
		_, err := in.Validate()
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", in)
	}
}
