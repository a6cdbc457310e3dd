package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/tenantauth/internal/domain/repository"
)

const tenantColumns = `id, name, domain, address, phone, created_at, updated_at`

// TenantRepo implementa repository.TenantRepository.
type TenantRepo struct{ db *sql.DB }

// NewTenantRepo crea el repositorio de tenants.
func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{db: db} }

func scanTenant(row rowScanner) (*repository.Tenant, error) {
	var (
		t      repository.Tenant
		domain sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &domain, &t.Address, &t.Phone, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Domain = stringPtr(domain)
	return &t, nil
}

func (r *TenantRepo) queryOne(ctx context.Context, op, query string, args ...any) (*repository.Tenant, error) {
	t, err := scanTenant(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(op, err)
	}
	return t, nil
}

func (r *TenantRepo) FindByID(ctx context.Context, id string) (*repository.Tenant, error) {
	const query = `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return r.queryOne(ctx, "find tenant by id", query, id)
}

func (r *TenantRepo) List(ctx context.Context, limit, offset int) ([]repository.Tenant, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, mapError("count tenants", err)
	}
	if total == 0 {
		return []repository.Tenant{}, 0, nil
	}

	const query = `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, mapError("list tenants", err)
	}
	defer rows.Close()

	out := make([]repository.Tenant, 0, limit)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, mapError("scan tenant", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list tenants", err)
	}
	return out, total, nil
}

func (r *TenantRepo) Create(ctx context.Context, in repository.CreateTenantInput) (*repository.Tenant, error) {
	const query = `
		INSERT INTO tenants (id, name, domain, address, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + tenantColumns

	t, err := scanTenant(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), in.Name, nullString(in.Domain), in.Address, in.Phone,
	))
	if err != nil {
		return nil, mapError("insert tenant", err)
	}
	return t, nil
}

func (r *TenantRepo) Update(ctx context.Context, id string, in repository.UpdateTenantInput) (*repository.Tenant, error) {
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
	if in.Domain != nil {
		// domain vacío = quitar el dominio
		if *in.Domain == "" {
			sets = append(sets, "domain = NULL")
		} else {
			add("domain", *in.Domain)
		}
	}
	if in.Address != nil {
		add("address", *in.Address)
	}
	if in.Phone != nil {
		add("phone", *in.Phone)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE tenants SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + tenantColumns
	return r.queryOne(ctx, "update tenant", query, args...)
}

func (r *TenantRepo) Delete(ctx context.Context, id string, detach bool) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("pg: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if detach {
		const detachQuery = `UPDATE users SET tenant_id = NULL, updated_at = NOW() WHERE tenant_id = $1`
		if _, err := tx.ExecContext(ctx, detachQuery, id); err != nil {
			if isInvalidID(err) {
				return false, nil
			}
			return false, mapError("detach tenant users", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, mapError("delete tenant", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError("delete tenant", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("pg: commit tx: %w", err)
	}
	return true, nil
}
