package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ariefcatur/go-pizza-bot/internal/orders"
	"github.com/ariefcatur/go-pizza-bot/internal/postgres"
)

func setupRepo(t *testing.T) *orders.Repo {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pg, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pizza"),
		tcpostgres.WithUsername("pizza"),
		tcpostgres.WithPassword("pizza"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn))
	// second run must be a no-op
	require.NoError(t, postgres.Migrate(dsn))

	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return &orders.Repo{DB: pool}
}

func newOrder(user int64) orders.NewOrder {
	return orders.NewOrder{
		UserID:        user,
		Items:         []orders.Item{{Name: "Pepperoni (Large)", Price: 650, Quantity: 2}},
		Total:         1300,
		Address:       "Baker st. 221b",
		Phone:         "+1 555 010 2030",
		PaymentMethod: "cash",
	}
}

func TestRepo_Lifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newOrder(42))
	require.NoError(t, err)
	assert.Positive(t, id)

	o, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), o.UserID)
	assert.Equal(t, orders.StatusNew, o.Status)
	assert.Equal(t, 1300, o.Total)
	require.Len(t, o.Items, 1)
	assert.Equal(t, orders.Item{Name: "Pepperoni (Large)", Price: 650, Quantity: 2}, o.Items[0])
	assert.Equal(t, time.UTC, o.CreatedAt.Location())

	user, err := repo.UpdateStatus(ctx, id, orders.StatusNew, orders.StatusCooking)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user)

	_, err = repo.UpdateStatus(ctx, id, orders.StatusNew, orders.StatusCancelled)
	assert.ErrorIs(t, err, orders.ErrStatusConflict)

	_, err = repo.UpdateStatus(ctx, id+1000, orders.StatusNew, orders.StatusCooking)
	assert.ErrorIs(t, err, orders.ErrNotFound)

	_, err = repo.Get(ctx, id+1000)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestRepo_ListsNewestFirst(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	var ids []int64
	for _, user := range []int64{1, 2, 1, 1} {
		id, err := repo.Create(ctx, newOrder(user))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	mine, err := repo.ListByUser(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, ids[3], mine[0].ID)
	assert.Equal(t, ids[2], mine[1].ID)

	all, err := repo.ListAll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID)
	assert.Equal(t, int64(2), all[2].UserID)
}

func TestRepo_DeleteAgedOnlyTerminal(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	doneOld, err := repo.Create(ctx, newOrder(7))
	require.NoError(t, err)
	cookingOld, err := repo.Create(ctx, newOrder(7))
	require.NoError(t, err)
	doneFresh, err := repo.Create(ctx, newOrder(7))
	require.NoError(t, err)

	for _, id := range []int64{doneOld, doneFresh} {
		_, err = repo.UpdateStatus(ctx, id, orders.StatusNew, orders.StatusCooking)
		require.NoError(t, err)
		_, err = repo.UpdateStatus(ctx, id, orders.StatusCooking, orders.StatusDone)
		require.NoError(t, err)
	}
	_, err = repo.UpdateStatus(ctx, cookingOld, orders.StatusNew, orders.StatusCooking)
	require.NoError(t, err)

	_, err = repo.DB.Exec(ctx, `UPDATE orders SET created_at = now() - interval '2 hours' WHERE id = ANY($1)`,
		[]int64{doneOld, cookingOld})
	require.NoError(t, err)
	_, err = repo.DB.Exec(ctx, `UPDATE orders SET created_at = now() - interval '5 minutes' WHERE id = $1`, doneFresh)
	require.NoError(t, err)

	n, err := repo.DeleteAged(ctx, orders.TerminalStatuses, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, doneOld)
	assert.ErrorIs(t, err, orders.ErrNotFound)
	_, err = repo.Get(ctx, cookingOld)
	assert.NoError(t, err)
	_, err = repo.Get(ctx, doneFresh)
	assert.NoError(t, err)

	n, err = repo.DeleteAged(ctx, orders.TerminalStatuses, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepo_NilPool(t *testing.T) {
	var repo *orders.Repo
	_, err := repo.Create(context.Background(), newOrder(1))
	assert.True(t, errors.Is(err, orders.ErrNotInitialized))

	_, err = (&orders.Repo{}).ListAll(context.Background(), 5)
	assert.ErrorIs(t, err, orders.ErrNotInitialized)
}
