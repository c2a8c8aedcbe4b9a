package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeParse(t *testing.T) {
	cases := []Command{
		New(Start, "", ""),
		New(AddItem, "p3", "large"),
		New(BuilderToggle, "bacon", ""),
		New(AdminStatus, "17", "cooking"),
	}
	for _, c := range cases {
		got, err := Parse(c.Encode())
		require.NoError(t, err, c.Encode())
		assert.Equal(t, c, got)
	}
	assert.Equal(t, "add:p3:large", New(AddItem, "p3", "large").Encode())
	assert.Equal(t, "cart", New(CartShow, "", "").Encode())
}

func TestParseRejects(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("bogus:1")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Parse("add:a:b:c")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSupersedes(t *testing.T) {
	assert.True(t, CartShow.Supersedes())
	assert.True(t, AddItem.Supersedes())
	assert.True(t, BackToCart.Supersedes())
	assert.False(t, Pay.Supersedes())
	assert.False(t, Noop.Supersedes())
	assert.False(t, BuilderToggle.Supersedes())
	assert.False(t, AdminStatus.Supersedes())
}
