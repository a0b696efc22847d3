package catalog

import (
	"strings"

	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/store"
)

type Category string

const (
	CategoryClothes     Category = "CLOTHES"
	CategoryBags        Category = "BAGS"
	CategoryAccessories Category = "ACCESSORIES"
	CategorySocks       Category = "SOCKS"
)

var Categories = []Category{CategoryClothes, CategoryBags, CategoryAccessories, CategorySocks}

func (c Category) Valid() bool {
	for _, x := range Categories {
		if c == x {
			return true
		}
	}
	return false
}

// Product field names match the stored record keys.
type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"Name"`
	Price    Price    `json:"Price"`
	Category Category `json:"category"`
	Images   []string `json:"ImgUrl"`
	Stock    int      `json:"Stock"`
}

// Image returns the first image reference, or "".
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Images accepts an array of URIs, a comma-separated string, or nothing.
func Images(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DecodeProduct turns a stored record into a Product. Stock below zero is
// read as zero; a missing or unreadable price is a validation error.
func DecodeProduct(rec store.Record) (Product, error) {
	p := Product{
		ID:       rec.ID(),
		Name:     String(rec["Name"]),
		Category: Category(String(rec["category"])),
		Images:   Images(rec["ImgUrl"]),
	}
	if p.ID == "" {
		return Product{}, apperr.Validation("product record without id")
	}
	price, ok := Float(rec["Price"])
	if !ok && rec["Price"] != nil {
		return Product{}, apperr.Validation("product %s: unreadable price %v", p.ID, rec["Price"])
	}
	p.Price = Price(price)
	if stock, ok := Int(rec["Stock"]); ok && stock > 0 {
		p.Stock = stock
	}
	return p, nil
}

// Input is an operator create/update request. Price and ImgUrl are loosely
// typed because the dashboard sends form strings.
type Input struct {
	Name     string `json:"Name"`
	Price    any    `json:"Price"`
	Category string `json:"category"`
	ImgUrl   any    `json:"ImgUrl"`
	Stock    any    `json:"Stock"`
}

// Validate checks the input and returns the record to write.
func (in Input) Validate() (store.Record, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	price, ok := Float(in.Price)
	if !ok {
		return nil, apperr.Validation("price %v is not numeric", in.Price)
	}
	if price < 0 {
		return nil, apperr.Validation("price must not be negative")
	}
	cat := Category(strings.ToUpper(strings.TrimSpace(in.Category)))
	if !cat.Valid() {
		return nil, apperr.Validation("unknown category %q", in.Category)
	}
	stock := 0
	if in.Stock != nil {
		s, ok := Int(in.Stock)
		if !ok {
			return nil, apperr.Validation("stock %v is not an integer", in.Stock)
		}
		stock = s
	}
	if stock < 0 {
		return nil, apperr.Validation("stock must not be negative")
	}
	return store.Record{
		"Name":     name,
		"Price":    price,
		"category": string(cat),
		"ImgUrl":   Images(in.ImgUrl),
		"Stock":    stock,
	}, nil
}
