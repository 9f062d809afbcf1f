package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"users-service/internal/domain"
	"users-service/internal/repository"
)

func newTestRepository(t *testing.T) (repository.UserRepository, *DB) {
	t.Helper()

	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "nested", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo, db
}

func seed(t *testing.T, repo repository.UserRepository, names ...[2]string) []int64 {
	t.Helper()

	ids := make([]int64, 0, len(names))
	for _, n := range names {
		id, err := repo.Insert(context.Background(), n[0], n[1])
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestUserRepository_InitIsIdempotent(t *testing.T) {
	repo, _ := newTestRepository(t)
	require.NoError(t, repo.Init(context.Background()))
}

func TestUserRepository_Insert(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	users, err := repo.Find(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{ID: 1, FirstName: "Ada", LastName: "Lovelace"}}, users)
}

func TestUserRepository_Insert_Duplicate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	seed(t, repo, [2]string{"Ada", "Lovelace"})

	_, err := repo.Insert(ctx, "Ada", "Lovelace")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	users, err := repo.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_Insert_SameFirstNameIsAllowed(t *testing.T) {
	repo, _ := newTestRepository(t)
	ids := seed(t, repo, [2]string{"Ada", "Lovelace"}, [2]string{"Ada", "Byron"})
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestUserRepository_Find(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	seed(t, repo,
		[2]string{"Ada", "Lovelace"},
		[2]string{"Ada", "Byron"},
		[2]string{"Grace", "Hopper"},
	)

	tests := []struct {
		name     string
		criteria domain.Criteria
		wantIDs  []int64
	}{
		{name: "no criteria", criteria: nil, wantIDs: []int64{1, 2, 3}},
		{name: "first name", criteria: domain.Criteria{domain.FirstNameIs("Ada")}, wantIDs: []int64{1, 2}},
		{name: "last name", criteria: domain.Criteria{domain.LastNameIs("Hopper")}, wantIDs: []int64{3}},
		{name: "both", criteria: domain.Criteria{domain.FirstNameIs("Ada"), domain.LastNameIs("Byron")}, wantIDs: []int64{2}},
		{name: "no match", criteria: domain.Criteria{domain.FirstNameIs("Alan")}, wantIDs: []int64{}},
		{name: "value is bound not interpolated", criteria: domain.Criteria{domain.FirstNameIs("' OR '1'='1")}, wantIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := repo.Find(ctx, tt.criteria)
			require.NoError(t, err)
			require.NotNil(t, users)

			ids := make([]int64, 0, len(users))
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestUserRepository_Find_UnknownField(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.Find(context.Background(), domain.Criteria{{Field: domain.Field(42), Value: "x"}})
	assert.Error(t, err)
}

func TestUserRepository_Find_NullNames(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO users (first_name, last_name) VALUES (NULL, 'Anon')`)
	require.NoError(t, err)

	users, err := repo.Find(ctx, domain.Criteria{domain.LastNameIs("Anon")})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "", users[0].FirstName)
}

func TestUserRepository_Update(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	ids := seed(t, repo, [2]string{"Ada", "Lovelace"})

	changed, err := repo.Update(ctx, ids[0], "Ada", "Byron")
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	users, err := repo.Find(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{ID: ids[0], FirstName: "Ada", LastName: "Byron"}}, users)
}

func TestUserRepository_Update_SameValuesCountsRow(t *testing.T) {
	repo, _ := newTestRepository(t)
	ids := seed(t, repo, [2]string{"Ada", "Lovelace"})

	changed, err := repo.Update(context.Background(), ids[0], "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
}

func TestUserRepository_Update_Missing(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	seed(t, repo, [2]string{"Ada", "Lovelace"})

	changed, err := repo.Update(ctx, 99, "Grace", "Hopper")
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)

	users, err := repo.Find(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{ID: 1, FirstName: "Ada", LastName: "Lovelace"}}, users)
}

func TestUserRepository_Update_Duplicate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ids := seed(t, repo, [2]string{"Ada", "Lovelace"}, [2]string{"Grace", "Hopper"})

	_, err := repo.Update(context.Background(), ids[1], "Ada", "Lovelace")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_Delete(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	ids := seed(t, repo, [2]string{"Ada", "Lovelace"}, [2]string{"Grace", "Hopper"})

	changed, err := repo.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	changed, err = repo.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)

	users, err := repo.Find(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{ID: ids[1], FirstName: "Grace", LastName: "Hopper"}}, users)
}

func TestUserRepository_Ping(t *testing.T) {
	repo, db := newTestRepository(t)
	require.NoError(t, repo.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, repo.Ping(context.Background()))
}

func TestDB_SnapshotTo(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	seed(t, repo, [2]string{"Ada", "Lovelace"}, [2]string{"Grace", "Hopper"})

	path := filepath.Join(t.TempDir(), "snap", "users.db")
	require.NoError(t, db.SnapshotTo(ctx, path))

	snap, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	defer snap.Close()

	users, err := NewUserRepository(snap).Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
