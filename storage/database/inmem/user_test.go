package inmemdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/user"
	"github.com/trezcool/lumina/storage/database/inmem"
	"github.com/trezcool/lumina/tests"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	now := time.Now()

	ada := testutil.CreateUser(t, repo, "Ada Lovelace", "ada@lumina.edu", "", user.RoleStudent, true, now.Add(-time.Hour))
	bob := testutil.CreateUser(t, repo, "bob Tutor", "bob@lumina.edu", "", user.RoleInstructor, true, now.Add(-time.Minute))
	cy := testutil.CreateUser(t, repo, "Cy Admin", "cy@lumina.edu", "", user.RoleAdmin, false, now)

	t.Run("uniqueness", func(t *testing.T) {
		assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness(ctx, "ADA@lumina.edu"))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "ada@lumina.edu", ada))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "new@lumina.edu"))
	})

	t.Run("get", func(t *testing.T) {
		usr, err := repo.GetUser(ctx, user.GetFilter{Email: "Bob@lumina.edu"})
		require.NoError(t, err)
		if diff := cmp.Diff(bob, usr); diff != "" {
			t.Errorf("GetUser() mismatch (-want +got):\n%s", diff)
		}

		_, err = repo.GetUser(ctx, user.GetFilter{ID: "nope"})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		active := true
		tests := []struct {
			name     string
			filter   *user.QueryFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{"all, oldest first", nil, nil, []string{ada.ID, bob.ID, cy.ID}},
			{"search", &user.QueryFilter{Search: "TUTOR"}, nil, []string{bob.ID}},
			{"roles", &user.QueryFilter{Roles: []string{user.RoleAdmin, user.RoleStudent}}, nil, []string{ada.ID, cy.ID}},
			{"active", &user.QueryFilter{IsActive: &active}, nil, []string{ada.ID, bob.ID}},
			{"by name desc", nil, []core.DBOrdering{{Field: "name"}}, []string{cy.ID, bob.ID, ada.ID}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				users, err := repo.QueryUsers(ctx, tc.filter, tc.ordering...)
				require.NoError(t, err)
				ids := make([]string, 0, len(users))
				for _, u := range users {
					ids = append(ids, u.ID)
				}
				assert.Equal(t, tc.want, ids)
			})
		}
	})

	t.Run("count by role", func(t *testing.T) {
		counts, err := repo.CountUsersByRole(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{user.RoleAdmin: 1, user.RoleInstructor: 1, user.RoleStudent: 1}, counts)
	})

	t.Run("update & delete", func(t *testing.T) {
		cy.Name = "Cy Root"
		_, err := repo.UpdateUser(ctx, cy)
		require.NoError(t, err)
		usr, err := repo.GetUser(ctx, user.GetFilter{ID: cy.ID})
		require.NoError(t, err)
		assert.Equal(t, "Cy Root", usr.Name)

		require.NoError(t, repo.DeleteUsersByID(ctx, cy.ID))
		_, err = repo.UpdateUser(ctx, cy)
		assert.Equal(t, user.ErrNotFound, err)
	})
}
