package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/pizza?sslmode=disable":   "pgx5://u:p@db:5432/pizza?sslmode=disable",
		"postgresql://u:p@db:5432/pizza?sslmode=disable": "pgx5://u:p@db:5432/pizza?sslmode=disable",
		"pgx5://u:p@db/pizza":                            "pgx5://u:p@db/pizza",
	}
	for in, want := range cases {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}
