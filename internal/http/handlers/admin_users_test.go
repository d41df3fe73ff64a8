package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/cache"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const adminID = "99999999-9999-4999-8999-999999999999"

// adminRouter mounts the full admin route set behind a planted admin
// identity, mirroring the production layout.
func adminRouter(h *handlers.AdminUsersHandler) *gin.Engine {
	r := gin.New()

	grp := r.Group("/api/users", identityMiddleware(adminID, "admin@example.com", user.RoleAdmin))
	grp.GET("", h.ListUsers)
	grp.GET("/:id", h.GetUser)
	grp.PUT("/:id/activate", h.Activate)
	grp.PUT("/:id/deactivate", h.Deactivate)
	grp.DELETE("/:id", h.Delete)

	return r
}

// seedRepo returns a repo holding the acting admin plus n regular users
// with ascending creation times, so listing order is deterministic.
func seedRepo(t *testing.T, n int) (*memory.UsersRepo, []user.User) {
	t.Helper()

	repo := memory.NewUsersRepo()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	admin := user.User{
		ID:        adminID,
		FullName:  "Site Admin",
		Email:     "admin@example.com",
		Role:      user.RoleAdmin,
		Status:    user.StatusActive,
		CreatedAt: base,
		UpdatedAt: base,
	}
	if err := repo.Create(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	users := make([]user.User, 0, n)

	for i := 1; i <= n; i++ {
		u := user.User{
			ID:        uuid.NewString(),
			FullName:  fmt.Sprintf("User %02d", i),
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Role:      user.RoleUser,
			Status:    user.StatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("seed user %d: %v", i, err)
		}
		users = append(users, u)
	}

	return repo, users
}

func TestAdminListUsers(t *testing.T) {
	t.Run("pagination", func(t *testing.T) {
		repo, _ := seedRepo(t, 14) // 15 total with the admin
		h := handlers.NewAdminUsersHandler(repo, nil)
		r := adminRouter(h)

		w := doJSON(t, r, http.MethodGet, "/api/users?page=2&limit=10", "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}

		body := decodeBody(t, w)

		records, _ := body["users"].([]any)
		if len(records) != 5 {
			t.Fatalf("got %d records on page 2, want 5", len(records))
		}

		pg, _ := body["pagination"].(map[string]any)
		if pg["total"] != float64(15) {
			t.Fatalf("total = %v, want 15", pg["total"])
		}
		if pg["pages"] != float64(2) {
			t.Fatalf("pages = %v, want 2", pg["pages"])
		}
		if pg["hasMore"] != false {
			t.Fatalf("hasMore = %v, want false on the last page", pg["hasMore"])
		}
	})

	t.Run("empty page reports the real total", func(t *testing.T) {
		repo, _ := seedRepo(t, 4)
		h := handlers.NewAdminUsersHandler(repo, nil)
		r := adminRouter(h)

		w := doJSON(t, r, http.MethodGet, "/api/users?page=3&limit=10", "")

		body := decodeBody(t, w)

		records, _ := body["users"].([]any)
		if len(records) != 0 {
			t.Fatalf("got %d records past the end, want 0", len(records))
		}

		pg, _ := body["pagination"].(map[string]any)
		if pg["total"] != float64(5) {
			t.Fatalf("total = %v, want 5", pg["total"])
		}
	})

	t.Run("status filter", func(t *testing.T) {
		repo, users := seedRepo(t, 3)

		if _, err := repo.SetStatus(context.Background(), users[0].ID, user.StatusInactive); err != nil {
			t.Fatalf("set status: %v", err)
		}

		h := handlers.NewAdminUsersHandler(repo, nil)
		r := adminRouter(h)

		w := doJSON(t, r, http.MethodGet, "/api/users?status=inactive", "")

		body := decodeBody(t, w)

		records, _ := body["users"].([]any)
		if len(records) != 1 {
			t.Fatalf("got %d inactive users, want 1", len(records))
		}

		rec, _ := records[0].(map[string]any)
		if rec["id"] != users[0].ID {
			t.Fatalf("id = %v, want %q", rec["id"], users[0].ID)
		}
	})

	t.Run("search filter", func(t *testing.T) {
		repo, users := seedRepo(t, 5)
		h := handlers.NewAdminUsersHandler(repo, nil)
		r := adminRouter(h)

		w := doJSON(t, r, http.MethodGet, "/api/users?search=user02", "")

		body := decodeBody(t, w)

		records, _ := body["users"].([]any)
		if len(records) != 1 {
			t.Fatalf("got %d matches, want 1", len(records))
		}

		rec, _ := records[0].(map[string]any)
		if rec["email"] != users[1].Email {
			t.Fatalf("email = %v, want %q", rec["email"], users[1].Email)
		}
	})

	t.Run("role filter", func(t *testing.T) {
		repo, _ := seedRepo(t, 3)
		h := handlers.NewAdminUsersHandler(repo, nil)
		r := adminRouter(h)

		w := doJSON(t, r, http.MethodGet, "/api/users?role=admin", "")

		body := decodeBody(t, w)

		records, _ := body["users"].([]any)
		if len(records) != 1 {
			t.Fatalf("got %d admins, want 1", len(records))
		}
	})

	t.Run("invalid filter values", func(t *testing.T) {
		repo, _ := seedRepo(t, 1)
		h := handlers.NewAdminUsersHandler(repo, nil)
		r := adminRouter(h)

		for _, query := range []string{"role=superuser", "status=banned"} {
			w := doJSON(t, r, http.MethodGet, "/api/users?"+query, "")

			if w.Code != http.StatusBadRequest {
				t.Fatalf("query %q: got status %d, want 400", query, w.Code)
			}

			body := decodeBody(t, w)
			if body["message"] != "Validation failed" {
				t.Fatalf("query %q: message = %v, want Validation failed", query, body["message"])
			}
		}
	})

	t.Run("cached result is reused", func(t *testing.T) {
		repo, users := seedRepo(t, 2)
		h := handlers.NewAdminUsersHandler(repo, cache.New(time.Minute))
		r := adminRouter(h)

		first := doJSON(t, r, http.MethodGet, "/api/users", "")

		// a direct write bypasses the handler, so the cache keeps
		// serving the old view until a handler mutation clears it
		if err := repo.Delete(context.Background(), users[0].ID); err != nil {
			t.Fatalf("delete: %v", err)
		}

		second := doJSON(t, r, http.MethodGet, "/api/users", "")

		if first.Body.String() != second.Body.String() {
			t.Fatal("expected the cached listing to be served unchanged")
		}
	})

	t.Run("etag not modified", func(t *testing.T) {
		repo, _ := seedRepo(t, 2)
		h := handlers.NewAdminUsersHandler(repo, cache.New(time.Minute))
		r := adminRouter(h)

		first := doJSON(t, r, http.MethodGet, "/api/users?limit=10", "")

		if first.Code != http.StatusOK {
			t.Fatalf("first call got %d, body=%s", first.Code, first.Body.String())
		}

		etag := first.Header().Get("ETag")
		if etag == "" {
			t.Fatal("expected ETag header in first response")
		}

		req := httptest.NewRequest(http.MethodGet, "/api/users?limit=10", nil)
		req.Header.Set("If-None-Match", etag)

		second := httptest.NewRecorder()
		r.ServeHTTP(second, req)

		if second.Code != http.StatusNotModified {
			t.Fatalf("second call got %d, want %d, body=%s", second.Code, http.StatusNotModified, second.Body.String())
		}

		if second.Body.Len() != 0 {
			t.Fatalf("expected empty body for 304, got %q", second.Body.String())
		}

		if got := second.Header().Get("ETag"); got == "" {
			t.Fatal("expected ETag header in 304 response")
		}
	})

	t.Run("mutations invalidate the cache", func(t *testing.T) {
		repo, users := seedRepo(t, 2)
		h := handlers.NewAdminUsersHandler(repo, cache.New(time.Minute))
		r := adminRouter(h)

		doJSON(t, r, http.MethodGet, "/api/users", "")
		doJSON(t, r, http.MethodDelete, "/api/users/"+users[0].ID, "")

		w := doJSON(t, r, http.MethodGet, "/api/users", "")

		body := decodeBody(t, w)
		pg, _ := body["pagination"].(map[string]any)
		if pg["total"] != float64(2) {
			t.Fatalf("total = %v after delete, want 2", pg["total"])
		}
	})
}

func TestAdminGetUser(t *testing.T) {
	repo, users := seedRepo(t, 1)
	h := handlers.NewAdminUsersHandler(repo, nil)
	r := adminRouter(h)

	t.Run("found", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/users/"+users[0].ID, "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200", w.Code)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/users/"+uuid.NewString(), "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404", w.Code)
		}
	})

	t.Run("malformed id behaves like missing", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/users/not-a-uuid", "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404", w.Code)
		}
		if !strings.Contains(w.Body.String(), "User not found") {
			t.Fatalf("unexpected body %q", w.Body.String())
		}
	})

	t.Run("malformed id on mutations", func(t *testing.T) {
		// the id is validated before any other check runs
		requests := []struct {
			method string
			path   string
		}{
			{http.MethodPut, "/api/users/not-a-uuid/activate"},
			{http.MethodPut, "/api/users/not-a-uuid/deactivate"},
			{http.MethodDelete, "/api/users/not-a-uuid"},
		}

		for _, req := range requests {
			w := doJSON(t, r, req.method, req.path, "")

			if w.Code != http.StatusNotFound {
				t.Fatalf("%s %s: got status %d, want 404", req.method, req.path, w.Code)
			}
			if !strings.Contains(w.Body.String(), "User not found") {
				t.Fatalf("%s %s: unexpected body %q", req.method, req.path, w.Body.String())
			}
		}
	})
}

func TestAdminStatusToggle(t *testing.T) {
	repo, users := seedRepo(t, 1)
	h := handlers.NewAdminUsersHandler(repo, nil)
	r := adminRouter(h)

	target := users[0]

	w := doJSON(t, r, http.MethodPut, "/api/users/"+target.ID+"/deactivate", "")

	if w.Code != http.StatusOK {
		t.Fatalf("deactivate: got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), fmt.Sprintf("User %s deactivated successfully", target.FullName)) {
		t.Fatalf("unexpected body %q", w.Body.String())
	}

	got, err := repo.GetByID(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != user.StatusInactive {
		t.Fatalf("status = %q, want %q", got.Status, user.StatusInactive)
	}

	w = doJSON(t, r, http.MethodPut, "/api/users/"+target.ID+"/activate", "")

	if w.Code != http.StatusOK {
		t.Fatalf("activate: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), fmt.Sprintf("User %s activated successfully", target.FullName)) {
		t.Fatalf("unexpected body %q", w.Body.String())
	}

	got, err = repo.GetByID(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != user.StatusActive {
		t.Fatalf("status = %q, want %q", got.Status, user.StatusActive)
	}
}

func TestAdminSelfProtection(t *testing.T) {
	repo, _ := seedRepo(t, 1)
	h := handlers.NewAdminUsersHandler(repo, nil)
	r := adminRouter(h)

	t.Run("cannot deactivate self", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/users/"+adminID+"/deactivate", "")

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400", w.Code)
		}
		if !strings.Contains(w.Body.String(), "You cannot deactivate your own account") {
			t.Fatalf("unexpected body %q", w.Body.String())
		}

		got, err := repo.GetByID(context.Background(), adminID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status != user.StatusActive {
			t.Fatal("self-deactivation must not write")
		}
	})

	t.Run("cannot delete self", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, "/api/users/"+adminID, "")

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want 400", w.Code)
		}
		if !strings.Contains(w.Body.String(), "You cannot delete your own account") {
			t.Fatalf("unexpected body %q", w.Body.String())
		}

		if _, err := repo.GetByID(context.Background(), adminID); err != nil {
			t.Fatal("self-deletion must not write")
		}
	})

	t.Run("can activate self", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/users/"+adminID+"/activate", "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}
	})
}

func TestAdminDelete(t *testing.T) {
	repo, users := seedRepo(t, 2)
	h := handlers.NewAdminUsersHandler(repo, nil)
	r := adminRouter(h)

	target := users[0]

	w := doJSON(t, r, http.MethodDelete, "/api/users/"+target.ID, "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), fmt.Sprintf("User %s deleted successfully", target.FullName)) {
		t.Fatalf("unexpected body %q", w.Body.String())
	}

	if _, err := repo.GetByID(context.Background(), target.ID); err == nil {
		t.Fatal("deleted user should be gone")
	}

	// deleting again reports missing
	w = doJSON(t, r, http.MethodDelete, "/api/users/"+target.ID, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: got status %d, want 404", w.Code)
	}
}
