// Package repo provides storage access for user accounts
package repo

import (
	"context"

	"codespeak/internal/modkit/repokit"
	perr "codespeak/internal/platform/errors"
	"codespeak/internal/services/auth/domain"
)

// Repo defines the repository contract for accounts
type Repo interface {
	Create(ctx context.Context, u domain.User) error
	ByEmail(ctx context.Context, email string) (domain.User, error)
	ByID(ctx context.Context, id string) (domain.User, error)
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Create(ctx context.Context, u domain.User) error {
	_, err := r.q.Exec(ctx, `
insert into users (id, name, email, password_hash, created_at)
values ($1,$2,$3,$4,$5)
`, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if perr.IsDuplicateKey(err) {
			return perr.DuplicateKeyf("Email already registered")
		}
		return perr.FromDB(err, "user insert failed")
	}
	return nil
}

func (r *queries) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`select id, name, email, password_hash, created_at from users where email = $1`, email))
}

func (r *queries) ByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`select id, name, email, password_hash, created_at from users where id = $1`, id))
}

func (r *queries) scanOne(row repokit.Row) (domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if perr.IsNoRows(err) {
			return domain.User{}, perr.NotFoundf("User not found")
		}
		return domain.User{}, perr.FromDB(err, "user select failed")
	}
	return u, nil
}
