package user

import (
	"errors"
	"strings"
	"time"
)

// Role is the authorization tier of an account.
type Role string

// Status flags whether an account is usable.
type Status string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"

	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already exists")
)

type User struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NormalizeEmail is the canonical form used as the login key and for
// the uniqueness check.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfilePatch carries the optional fields of a profile update; nil
// means "leave unchanged".
type ProfilePatch struct {
	FullName *string
	Email    *string
}

func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.Email == nil
}

// ListFilter drives the admin listing. Page is 1-based.
type ListFilter struct {
	Search string
	Role   Role
	Status Status
	Page   int
	Limit  int
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Pagination is the metadata block returned alongside a page of users.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasMore bool `json:"hasMore"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}

	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasMore: page*limit < total,
	}
}
