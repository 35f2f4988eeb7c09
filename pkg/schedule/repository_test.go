package schedule

import (
	"flag"
	"os"
	"testing"

	"github.com/clubbrunch/brunch/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) *RepositoryImpl {
	if db == nil {
		t.Skip("repository tests need a database container")
	}
	test_utils.Truncate(t, db)
	return NewRepository(db)
}

func TestRepositoryImpl_GetMissingKey(t *testing.T) {
	repo := setupTestRepository(t)

	value, err := repo.Get(ctx, OverrideDateKey)

	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestRepositoryImpl_SetOverwrites(t *testing.T) {
	repo := setupTestRepository(t)

	require.NoError(t, repo.Set(ctx, OverrideDateKey, "10.03.2024"))
	require.NoError(t, repo.Set(ctx, OverrideDateKey, "24.03.2024"))

	value, err := repo.Get(ctx, OverrideDateKey)
	require.NoError(t, err)
	assert.Equal(t, "24.03.2024", value)
}

func TestRepositoryImpl_SetAllAndGetAll(t *testing.T) {
	repo := setupTestRepository(t)
	require.NoError(t, repo.Set(ctx, "unrelated", "kept"))

	err := repo.SetAll(ctx, Schedule{OverrideDate: "10.03.2024", Cancelled: true}.Values())
	require.NoError(t, err)

	values, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kept", values["unrelated"])
	assert.Equal(t, Schedule{OverrideDate: "10.03.2024", Cancelled: true}, FromValues(values))
}
