package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMenu = `{
  "categories": [
    {"id": "pizza", "short": "p", "title": "Pizzas", "sized": true, "items": [
      {"name": "Margherita", "price_small": 350, "price_large": 550},
      {"name": "Build your own", "price_small": 300, "price_large": 450, "custom": true}
    ]},
    {"id": "drinks", "short": "d", "title": "Drinks", "items": [
      {"name": "Cola", "price_small": 100}
    ]}
  ]
}`

func TestResolve(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleMenu))
	require.NoError(t, err)

	c, idx, p, err := m.Resolve("p1")
	require.NoError(t, err)
	assert.Equal(t, "pizza", c.ID)
	assert.Equal(t, 1, idx)
	assert.True(t, p.Custom)

	price, err := p.Price(Large)
	require.NoError(t, err)
	assert.Equal(t, 450, price)

	_, _, p, err = m.Resolve("d0")
	require.NoError(t, err)
	_, err = p.Price(Large)
	assert.ErrorIs(t, err, ErrNoPrice)
	price, err = p.Price(NoSize)
	require.NoError(t, err)
	assert.Equal(t, 100, price)

	_, _, _, err = m.Resolve("p9")
	assert.ErrorIs(t, err, ErrUnknownProduct)
	_, _, _, err = m.Resolve("x1")
	assert.ErrorIs(t, err, ErrBadRef)
	_, _, _, err = m.Resolve("pz")
	assert.ErrorIs(t, err, ErrBadRef)
}

func TestParseRejectsDuplicateShort(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"categories":[{"id":"a","short":"p"},{"id":"b","short":"p"}]}`))
	assert.Error(t, err)
}

func TestParseRejectsOverlappingShorts(t *testing.T) {
	for _, menu := range []string{
		`{"categories":[{"id":"pizza","short":"p"},{"id":"pasta","short":"pa"}]}`,
		`{"categories":[{"id":"pasta","short":"pa"},{"id":"pizza","short":"p"}]}`,
	} {
		_, err := Parse(strings.NewReader(menu))
		assert.ErrorContains(t, err, `short "p" is a prefix of "pa"`)
	}

	m, err := Parse(strings.NewReader(`{"categories":[{"id":"pizza","short":"p"},{"id":"snacks","short":"s"},{"id":"soup","short":"so"}]}`))
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestIngredientPricing(t *testing.T) {
	grams := map[string]int{"bacon": 50, "tomato": 100, "onion": 0, "unknown": 50}
	assert.Equal(t, 50+2*20, DefaultIngredients.Extra(grams))
	assert.Equal(t, "Tomatoes 100g, Bacon 50g", DefaultIngredients.Describe(grams))
}

func TestParseSize(t *testing.T) {
	s, err := ParseSize("nosize")
	require.NoError(t, err)
	assert.Equal(t, NoSize, s)
	_, err = ParseSize("medium")
	assert.ErrorIs(t, err, ErrUnknownSize)
}

func TestLoadShippedMenu(t *testing.T) {
	m, err := Load("../../menu_data.json")
	require.NoError(t, err)
	require.Len(t, m.Categories, 3)

	cat, _, p, err := m.Resolve("p3")
	require.NoError(t, err)
	assert.True(t, cat.Sized)
	assert.True(t, p.Custom)

	_, _, cola, err := m.Resolve("d0")
	require.NoError(t, err)
	price, err := cola.Price(NoSize)
	require.NoError(t, err)
	assert.Equal(t, 120, price)

	_, err = Load("does-not-exist.json")
	assert.Error(t, err)
}
