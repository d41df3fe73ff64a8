package user_test

import (
	"testing"

	"github.com/geocoder89/userhub/internal/domain/user"
)

func TestNewDefaults(t *testing.T) {
	u := user.New("Test User", "  Test@Example.COM ", "hash")

	if u.ID == "" {
		t.Error("expected an id")
	}

	if u.Email != "test@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}

	if u.Role != user.RoleUser {
		t.Errorf("got role %q, want user", u.Role)
	}

	if u.Status != user.StatusActive {
		t.Errorf("got status %q, want active", u.Status)
	}
}

func TestEnumValidity(t *testing.T) {
	if !user.RoleAdmin.Valid() || !user.RoleUser.Valid() {
		t.Error("known roles must be valid")
	}

	if user.Role("root").Valid() {
		t.Error("unknown role accepted")
	}

	if !user.StatusActive.Valid() || !user.StatusInactive.Valid() {
		t.Error("known statuses must be valid")
	}

	if user.Status("banned").Valid() {
		t.Error("unknown status accepted")
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		limit       int
		total       int
		wantPages   int
		wantHasMore bool
	}{
		{name: "second_page_of_15", page: 2, limit: 10, total: 15, wantPages: 2, wantHasMore: false},
		{name: "first_page_of_15", page: 1, limit: 10, total: 15, wantPages: 2, wantHasMore: true},
		{name: "exact_fit", page: 2, limit: 5, total: 10, wantPages: 2, wantHasMore: false},
		{name: "empty", page: 1, limit: 10, total: 0, wantPages: 0, wantHasMore: false},
		{name: "single", page: 1, limit: 10, total: 3, wantPages: 1, wantHasMore: false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			p := user.NewPagination(tt.page, tt.limit, tt.total)

			if p.Pages != tt.wantPages {
				t.Errorf("got pages=%d, want %d", p.Pages, tt.wantPages)
			}

			if p.HasMore != tt.wantHasMore {
				t.Errorf("got hasMore=%v, want %v", p.HasMore, tt.wantHasMore)
			}

			if p.Total != tt.total || p.Page != tt.page || p.Limit != tt.limit {
				t.Errorf("metadata echo mismatch: %+v", p)
			}
		})
	}
}
