package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
	"github.com/dropDatabas3/tenantauth/internal/domain/types"
)

const userColumns = `id, name, email, password, role, tenant_id, last_sign_in_at, created_at, updated_at`

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ db *sql.DB }

// NewUserRepo crea el repositorio de usuarios.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(row rowScanner) (*repository.User, error) {
	var (
		u        repository.User
		role     string
		password sql.NullString
		tenantID sql.NullString
		lastSign sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &password, &role, &tenantID, &lastSign, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = types.Role(role)
	u.PasswordHash = stringPtr(password)
	u.TenantID = stringPtr(tenantID)
	u.LastSignInAt = timePtr(lastSign)
	return &u, nil
}

// queryOne ejecuta una consulta de una fila; sin filas => (nil, nil).
func (r *UserRepo) queryOne(ctx context.Context, q dbtx, op, query string, args ...any) (*repository.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryOne(ctx, r.db, "find user by id", query, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.queryOne(ctx, r.db, "find user by email", query, strings.TrimSpace(email))
}

func (r *UserRepo) List(ctx context.Context, f repository.ListUsersFilter) ([]repository.User, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		args = append(args, string(f.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.Name != "" {
		args = append(args, "%"+escapeLike(f.Name)+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.Email != "" {
		args = append(args, "%"+escapeLike(f.Email)+"%")
		where = append(where, fmt.Sprintf("email ILIKE $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count users", err)
	}
	if total == 0 {
		return []repository.User{}, 0, nil
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		userColumns, clause, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list users", err)
	}
	defer rows.Close()

	users := make([]repository.User, 0, f.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapError("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list users", err)
	}
	return users, total, nil
}

func (r *UserRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	const query = `
		INSERT INTO users (id, name, email, password, role, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	role := in.Role
	if role == "" {
		role = types.RoleCustomer
	}
	var password *string
	if in.PasswordHash != "" {
		password = &in.PasswordHash
	}

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), in.Name, strings.TrimSpace(in.Email), nullString(password), string(role), nullString(in.TenantID),
	))
	if err != nil {
		return nil, mapError("insert user", err)
	}
	return u, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, in repository.UpdateUserInput) (*repository.User, error) {
	if in.Empty() {
		return r.FindByID(ctx, id)
	}

	sets := []string{}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Email != nil {
		add("email", strings.TrimSpace(*in.Email))
	}
	if in.PasswordHash != nil {
		add("password", *in.PasswordHash)
	}
	if in.Role != nil {
		add("role", string(*in.Role))
	}
	switch {
	case in.ClearTenant:
		sets = append(sets, "tenant_id = NULL")
	case in.TenantID != nil:
		add("tenant_id", *in.TenantID)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userColumns
	return r.queryOne(ctx, r.db, "update user", query, args...)
}

func (r *UserRepo) TouchSignIn(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET last_sign_in_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, at)
	return mapError("touch sign in", err)
}

func (r *UserRepo) Delete(ctx context.Context, id string) (*repository.User, error) {
	const query = `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns
	return r.queryOne(ctx, r.db, "delete user", query, id)
}

func (r *UserRepo) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID).Scan(&n)
	if isInvalidID(err) {
		return 0, nil
	}
	if err != nil {
		return 0, mapError("count users by tenant", err)
	}
	return n, nil
}

// escapeLike escapa los comodines de LIKE en input del usuario.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.TrimSpace(s))
}
