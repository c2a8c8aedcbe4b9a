package cart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	FreeDeliveryFrom = 800
	DeliveryFee      = 150
)

// Details describes a custom-built line: the size and grams per ingredient.
type Details struct {
	Size        string         `json:"size"`
	Ingredients map[string]int `json:"ingredients"`
}

type Line struct {
	Key       string
	Name      string
	UnitPrice int
	Quantity  int
	Details   *Details
}

// Ref is a short stable handle for Key, small enough for callback payloads.
func (l Line) Ref() string { return RefOf(l.Key) }

func (l Line) Amount() int { return l.UnitPrice * l.Quantity }

func (l Line) Custom() bool { return l.Details != nil }

func RefOf(key string) string {
	return strconv.FormatUint(xxhash.Sum64String(key), 36)
}

// Cart is a snapshot of one user's lines in insertion order.
type Cart struct {
	Lines []Line
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

func (c Cart) Subtotal() int {
	sum := 0
	for _, l := range c.Lines {
		sum += l.Amount()
	}
	return sum
}

func (c Cart) DeliveryFee() int { return DeliveryFeeFor(c.Subtotal()) }

func (c Cart) Total() int { return c.Subtotal() + c.DeliveryFee() }

func (c Cart) HasCustom() bool {
	for _, l := range c.Lines {
		if l.Custom() {
			return true
		}
	}
	return false
}

func (c Cart) Line(key string) (Line, bool) {
	for _, l := range c.Lines {
		if l.Key == key {
			return l, true
		}
	}
	return Line{}, false
}

// KeyForRef maps a short ref back to its item key.
func (c Cart) KeyForRef(ref string) (string, bool) {
	for _, l := range c.Lines {
		if l.Ref() == ref {
			return l.Key, true
		}
	}
	return "", false
}

func DeliveryFeeFor(subtotal int) int {
	if subtotal >= FreeDeliveryFrom {
		return 0
	}
	return DeliveryFee
}

// ProductKey identifies a catalog product by category, position and size.
func ProductKey(category string, index int, size string) string {
	if size == "" {
		return fmt.Sprintf("%s_%d", category, index)
	}
	return fmt.Sprintf("%s_%d_%s", category, index, size)
}

// CustomKey identifies a custom pizza by size and its sorted ingredient grams.
// Ingredients at zero grams do not take part.
func CustomKey(size string, ingredients map[string]int) string {
	keys := make([]string, 0, len(ingredients))
	for k, g := range ingredients {
		if g > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("custom_")
	b.WriteString(size)
	for _, k := range keys {
		b.WriteByte('_')
		b.WriteString(k)
		b.WriteString(strconv.Itoa(ingredients[k]))
	}
	return b.String()
}
