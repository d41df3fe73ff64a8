package utils

import (
	"strconv"
	"strings"

	"github.com/geocoder89/userhub/internal/domain/user"
)

// BuildUsersListCacheKey derives a stable cache key from the full
// admin list query so distinct filters never share an entry.
func BuildUsersListCacheKey(filter user.ListFilter) string {
	return "users:list:v1:page=" + strconv.Itoa(filter.Page) +
		":limit=" + strconv.Itoa(filter.Limit) +
		":search=" + strings.ToLower(strings.TrimSpace(filter.Search)) +
		":role=" + string(filter.Role) +
		":status=" + string(filter.Status)
}
