package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-pizza-bot/internal/cart"
	"github.com/ariefcatur/go-pizza-bot/internal/catalog"
)

const user = int64(7)

func TestToggleFlipsPortion(t *testing.T) {
	b := New(cart.NewStore(), catalog.DefaultIngredients)
	b.Begin(user, catalog.Small, 300)

	s, grams, err := b.Toggle(user, "bacon")
	require.NoError(t, err)
	assert.Equal(t, 50, grams)
	assert.Equal(t, 350, s.Price(catalog.DefaultIngredients))

	s, grams, err = b.Toggle(user, "bacon")
	require.NoError(t, err)
	assert.Equal(t, 0, grams)
	assert.Equal(t, 300, s.Price(catalog.DefaultIngredients))
}

func TestDonePushesLineAndEndsSession(t *testing.T) {
	carts := cart.NewStore()
	b := New(carts, catalog.DefaultIngredients)
	b.Begin(user, catalog.Large, 450)
	_, _, err := b.Toggle(user, "ham")
	require.NoError(t, err)
	_, _, err = b.Toggle(user, "cheese")
	require.NoError(t, err)
	_, _, err = b.Toggle(user, "onion")
	require.NoError(t, err)
	_, _, err = b.Toggle(user, "onion")
	require.NoError(t, err)

	line, err := b.Done(user)
	require.NoError(t, err)
	assert.Equal(t, 450+40+30, line.UnitPrice)
	assert.Equal(t, "custom_large_cheese50_ham50", line.Key)
	assert.Equal(t, map[string]int{"ham": 50, "cheese": 50}, line.Details.Ingredients)

	c := carts.Get(user)
	require.Len(t, c.Lines, 1)
	assert.True(t, c.Lines[0].Custom())

	_, ok := b.Session(user)
	assert.False(t, ok)
}

func TestSameCustomPizzaTwiceMerges(t *testing.T) {
	carts := cart.NewStore()
	b := New(carts, catalog.DefaultIngredients)
	for i := 0; i < 2; i++ {
		b.Begin(user, catalog.Small, 300)
		_, _, err := b.Toggle(user, "feta")
		require.NoError(t, err)
		_, err = b.Done(user)
		require.NoError(t, err)
	}
	c := carts.Get(user)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestCancelLeavesCartAlone(t *testing.T) {
	carts := cart.NewStore()
	b := New(carts, catalog.DefaultIngredients)
	b.Begin(user, catalog.Small, 300)
	_, _, err := b.Toggle(user, "corn")
	require.NoError(t, err)

	require.NoError(t, b.Cancel(user))
	assert.True(t, carts.Get(user).Empty())
	assert.ErrorIs(t, b.Cancel(user), ErrNoSession)
}

func TestActionsWithoutSession(t *testing.T) {
	b := New(cart.NewStore(), catalog.DefaultIngredients)
	_, _, err := b.Toggle(user, "ham")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = b.Done(user)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUnknownIngredient(t *testing.T) {
	b := New(cart.NewStore(), catalog.DefaultIngredients)
	b.Begin(user, catalog.Small, 300)
	_, _, err := b.Toggle(user, "caviar")
	assert.ErrorIs(t, err, ErrUnknownIngredient)
}

type failingCart struct{}

func (failingCart) Add(int64, string, string, int, int, *cart.Details) error {
	return errors.New("boom")
}

func TestDoneKeepsSessionWhenCartRejects(t *testing.T) {
	b := New(failingCart{}, catalog.DefaultIngredients)
	b.Begin(user, catalog.Small, 300)
	_, err := b.Done(user)
	assert.Error(t, err)
	_, ok := b.Session(user)
	assert.True(t, ok)
}
