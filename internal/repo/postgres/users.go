package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, full_name, email, password_hash, role, status, last_login, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

// WithMetrics attaches the Prometheus observer; nil-safe everywhere else.
func (r *UsersRepo) WithMetrics(p *observability.Prom) *UsersRepo {
	r.prom = p
	return r
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	return r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			u.ID, u.FullName, u.Email, u.PasswordHash, u.Role, u.Status, u.LastLogin, u.CreatedAt, u.UpdatedAt,
		)

		return translateErr(err)
	})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
			email,
		), &u)
	})

	if err != nil {
		return user.User{}, translateErr(err)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		), &u)
	})

	if err != nil {
		return user.User{}, translateErr(err)
	}

	return u, nil
}

// UpdateProfile applies only the provided fields.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, patch user.ProfilePatch) (user.User, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	pos := 2

	if patch.FullName != nil {
		sets = append(sets, fmt.Sprintf("full_name = $%d", pos))
		args = append(args, *patch.FullName)
		pos++
	}

	if patch.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", pos))
		args = append(args, user.NormalizeEmail(*patch.Email))
		pos++
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + userColumns

	var u user.User

	err := r.observe("users.update_profile", func() error {
		return scanUser(r.pool.QueryRow(ctx, query, args...), &u)
	})

	if err != nil {
		return user.User{}, translateErr(err)
	}

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.observe("users.update_password", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
			id, passwordHash,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func (r *UsersRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.observe("users.update_last_login", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET last_login = $2 WHERE id = $1`,
			id, at,
		)

		return err
	})
}

func (r *UsersRepo) SetStatus(ctx context.Context, id string, status user.Status) (user.User, error) {
	var u user.User

	err := r.observe("users.set_status", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`UPDATE users SET status = $2, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, status,
		), &u)
	})

	if err != nil {
		return user.User{}, translateErr(err)
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		// if no rows were deleted as a result return a not found error
		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

// List returns one page plus the total matching count, newest first.
func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
	baseQuery := `SELECT ` + userColumns + `, COUNT(*) OVER() AS total FROM users`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argsPosition++
	}

	if filter.Role != "" {
		conds = append(conds, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, filter.Role)
		argsPosition++
	}

	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, filter.Status)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination, newest-created first
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset())

	var output []user.User
	total := 0

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]user.User, 0, filter.Limit)

		for rows.Next() {
			var u user.User
			var t int

			err = rows.Scan(
				&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
				&u.LastLogin, &u.CreatedAt, &u.UpdatedAt, &t,
			)

			if err != nil {
				return err
			}

			total = t
			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	// a page past the end yields no rows, so the window total is lost;
	// count separately so pagination metadata stays correct
	if len(output) == 0 && filter.Page > 1 {
		total, err = r.count(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
	}

	return output, total, nil
}

func (r *UsersRepo) count(ctx context.Context, filter user.ListFilter) (int, error) {
	query := `SELECT COUNT(*) FROM users`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argsPosition++
	}

	if filter.Role != "" {
		conds = append(conds, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, filter.Role)
		argsPosition++
	}

	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, filter.Status)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	total := 0
	err := r.pool.QueryRow(ctx, query, args...).Scan(&total)

	return total, err
}

// escapeLike makes a search term safe for use inside an ILIKE pattern:
// the term is a literal substring, so its metacharacters must not act
// as wildcards.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *user.User) error {
	return row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

// translateErr maps store-level failures to domain errors: missing rows
// to ErrNotFound, the lower(email) unique index to ErrEmailTaken.
func translateErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return user.ErrEmailTaken
	}

	return err
}
