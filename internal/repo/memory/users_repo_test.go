package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/repo/memory"
)

func seedUsers(t *testing.T, repo *memory.UsersRepo, n int) []user.User {
	t.Helper()

	now := time.Now().UTC()
	out := make([]user.User, 0, n)

	for i := 0; i < n; i++ {
		u := user.New(fmt.Sprintf("User %02d", i), fmt.Sprintf("user%02d@example.com", i), "hash")
		// spread creation times so ordering is deterministic
		u.CreatedAt = now.Add(-time.Duration(n-i) * time.Minute)

		if err := repo.Create(context.Background(), u); err != nil {
			t.Fatalf("seed create: %v", err)
		}

		out = append(out, u)
	}

	return out
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := memory.NewUsersRepo()

	first := user.New("First", "dupe@example.com", "hash")

	if err := repo.Create(context.Background(), first); err != nil {
		t.Fatalf("create: %v", err)
	}

	second := user.New("Second", "DUPE@example.com", "hash")

	err := repo.Create(context.Background(), second)

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	repo := memory.NewUsersRepo()
	users := seedUsers(t, repo, 2)

	email := users[1].Email

	_, err := repo.UpdateProfile(context.Background(), users[0].ID, user.ProfilePatch{Email: &email})

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}

	// updating to your own current email is not a conflict
	own := users[0].Email

	if _, err := repo.UpdateProfile(context.Background(), users[0].ID, user.ProfilePatch{Email: &own}); err != nil {
		t.Fatalf("self email update: %v", err)
	}
}

func TestListOrderingAndPagination(t *testing.T) {
	repo := memory.NewUsersRepo()
	seedUsers(t, repo, 15)

	page1, total, err := repo.List(context.Background(), user.ListFilter{Page: 1, Limit: 10})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if total != 15 || len(page1) != 10 {
		t.Fatalf("page1: got total=%d len=%d, want 15/10", total, len(page1))
	}

	// newest first
	for i := 1; i < len(page1); i++ {
		if page1[i].CreatedAt.After(page1[i-1].CreatedAt) {
			t.Fatalf("ordering broken at %d", i)
		}
	}

	page2, total, err := repo.List(context.Background(), user.ListFilter{Page: 2, Limit: 10})

	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}

	if total != 15 || len(page2) != 5 {
		t.Fatalf("page2: got total=%d len=%d, want 15/5", total, len(page2))
	}
}

func TestListFilters(t *testing.T) {
	repo := memory.NewUsersRepo()
	users := seedUsers(t, repo, 5)

	if _, err := repo.SetStatus(context.Background(), users[2].ID, user.StatusInactive); err != nil {
		t.Fatalf("set status: %v", err)
	}

	inactive, total, err := repo.List(context.Background(), user.ListFilter{Status: user.StatusInactive, Page: 1, Limit: 10})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if total != 1 || len(inactive) != 1 || inactive[0].ID != users[2].ID {
		t.Fatalf("status filter: got total=%d len=%d", total, len(inactive))
	}

	found, total, err := repo.List(context.Background(), user.ListFilter{Search: "USER02", Page: 1, Limit: 10})

	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if total != 1 || len(found) != 1 || found[0].Email != "user02@example.com" {
		t.Fatalf("search filter: got total=%d len=%d", total, len(found))
	}
}

func TestListSearchTreatsMetacharactersLiterally(t *testing.T) {
	repo := memory.NewUsersRepo()
	seedUsers(t, repo, 3)

	odd := user.New("100% Legit", "percent@example.com", "hash")

	if err := repo.Create(context.Background(), odd); err != nil {
		t.Fatalf("create: %v", err)
	}

	// "%" is a plain character in a search term, not a wildcard
	found, total, err := repo.List(context.Background(), user.ListFilter{Search: "%", Page: 1, Limit: 10})

	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if total != 1 || len(found) != 1 || found[0].Email != "percent@example.com" {
		t.Fatalf("got total=%d len=%d, want only the literal match", total, len(found))
	}

	if _, total, _ := repo.List(context.Background(), user.ListFilter{Search: "_", Page: 1, Limit: 10}); total != 0 {
		t.Fatalf("underscore search matched %d users, want 0", total)
	}
}

func TestDeleteAndGet(t *testing.T) {
	repo := memory.NewUsersRepo()
	users := seedUsers(t, repo, 1)

	if err := repo.Delete(context.Background(), users[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := repo.Delete(context.Background(), users[0].ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}

	if _, err := repo.GetByID(context.Background(), users[0].ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("get deleted: got %v, want ErrNotFound", err)
	}
}
