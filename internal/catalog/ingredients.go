package catalog

import (
	"fmt"
	"strings"
)

// GramStep is the portion size every ingredient price is quoted for.
const GramStep = 50

type Ingredient struct {
	Key        string
	Name       string
	PricePer50 int
}

// Ingredients is an ordered ingredient table.
type Ingredients []Ingredient

// DefaultIngredients is the build-your-own pizza topping list.
var DefaultIngredients = Ingredients{
	{"tomato", "Tomatoes", 20},
	{"cheese", "Mozzarella", 30},
	{"ham", "Ham", 40},
	{"pepperoni", "Pepperoni", 45},
	{"mushrooms", "Champignons", 25},
	{"olives", "Olives", 20},
	{"corn", "Corn", 15},
	{"onion", "Onion", 10},
	{"cucumber", "Pickles", 15},
	{"bacon", "Bacon", 50},
	{"chicken", "Chicken", 40},
	{"salami", "Salami", 45},
	{"pineapple", "Pineapple", 20},
	{"garlic_sauce", "Garlic sauce", 15},
	{"bbq_sauce", "BBQ sauce", 15},
	{"ketchup", "Ketchup", 10},
	{"mayo", "Mayonnaise", 10},
	{"parmesan", "Parmesan", 35},
	{"gorgonzola", "Gorgonzola", 50},
	{"feta", "Feta", 30},
}

func (t Ingredients) Lookup(key string) (Ingredient, bool) {
	for _, in := range t {
		if in.Key == key {
			return in, true
		}
	}
	return Ingredient{}, false
}

// Extra is the price of the given grams on top of the base price. Unknown keys
// cost nothing.
func (t Ingredients) Extra(grams map[string]int) int {
	sum := 0
	for key, g := range grams {
		if in, ok := t.Lookup(key); ok && g > 0 {
			sum += g / GramStep * in.PricePer50
		}
	}
	return sum
}

// Describe renders "Ham 50g, Bacon 100g" in table order, skipping zero grams.
func (t Ingredients) Describe(grams map[string]int) string {
	parts := make([]string, 0, len(grams))
	for _, in := range t {
		if g := grams[in.Key]; g > 0 {
			parts = append(parts, fmt.Sprintf("%s %dg", in.Name, g))
		}
	}
	return strings.Join(parts, ", ")
}
