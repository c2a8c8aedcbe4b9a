// Package catalog holds the static menu and the ingredient table.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type Size string

const (
	Small  Size = "small"
	Large  Size = "large"
	NoSize Size = ""
)

func ParseSize(s string) (Size, error) {
	switch Size(s) {
	case Small, Large, NoSize:
		return Size(s), nil
	case "nosize":
		return NoSize, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSize, s)
}

func (s Size) Label() string {
	switch s {
	case Small:
		return "Small"
	case Large:
		return "Large"
	}
	return ""
}

var (
	ErrBadRef         = errors.New("malformed product reference")
	ErrUnknownProduct = errors.New("unknown product")
	ErrUnknownSize    = errors.New("unknown size")
	ErrNoPrice        = errors.New("no price for this size")
)

type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceSmall  *int   `json:"price_small"`
	PriceLarge  *int   `json:"price_large"`
	ImageURL    string `json:"image_url"`
	// Custom marks the build-your-own pizza.
	Custom bool `json:"custom"`
}

// Price returns the price for a size. Unsized products use PriceSmall.
func (p Product) Price(size Size) (int, error) {
	var v *int
	switch size {
	case Large:
		v = p.PriceLarge
	default:
		v = p.PriceSmall
	}
	if v == nil {
		return 0, ErrNoPrice
	}
	return *v, nil
}

type Category struct {
	ID    string    `json:"id"`
	Short string    `json:"short"`
	Title string    `json:"title"`
	Sized bool      `json:"sized"`
	Items []Product `json:"items"`
}

// Ref is the compact product reference used in commands, e.g. "p3".
func (c Category) Ref(index int) string { return c.Short + strconv.Itoa(index) }

type Menu struct {
	Categories []Category `json:"categories"`
}

func Load(path string) (*Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open menu: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Menu, error) {
	var m Menu
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	seen := map[string]bool{}
	for i, c := range m.Categories {
		if c.ID == "" || c.Short == "" {
			return nil, fmt.Errorf("category %d: id and short are required", i)
		}
		if seen[c.Short] {
			return nil, fmt.Errorf("category %q: duplicate short %q", c.ID, c.Short)
		}
		seen[c.Short] = true
	}
	// product refs carry no separator, so no short may start another one
	for i, a := range m.Categories {
		for j, b := range m.Categories {
			if i != j && strings.HasPrefix(b.Short, a.Short) {
				return nil, fmt.Errorf("category %q: short %q is a prefix of %q", b.ID, a.Short, b.Short)
			}
		}
	}
	return &m, nil
}

func (m *Menu) Category(id string) (Category, bool) {
	for _, c := range m.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Resolve turns a product reference such as "p3" into its category, index and
// product.
func (m *Menu) Resolve(ref string) (Category, int, Product, error) {
	for _, c := range m.Categories {
		if !strings.HasPrefix(ref, c.Short) {
			continue
		}
		idx, err := strconv.Atoi(ref[len(c.Short):])
		if err != nil || idx < 0 {
			return Category{}, 0, Product{}, fmt.Errorf("%w: %q", ErrBadRef, ref)
		}
		if idx >= len(c.Items) {
			return Category{}, 0, Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, ref)
		}
		return c, idx, c.Items[idx], nil
	}
	return Category{}, 0, Product{}, fmt.Errorf("%w: %q", ErrBadRef, ref)
}
