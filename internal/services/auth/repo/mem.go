package repo

import (
	"context"

	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/store/mem"
	"codespeak/internal/services/auth/domain"
)

// Mem implements Repo on the shared in-memory document store
type Mem struct {
	db *mem.DB
}

// NewMem creates the memory repo
func NewMem(db *mem.DB) *Mem {
	if db == nil {
		panic("auth.repo requires a non nil mem.DB")
	}
	return &Mem{db: db}
}

func (r *Mem) Create(_ context.Context, u domain.User) error {
	return r.db.Update(func(tx *mem.Tx) error {
		dup := false
		tx.Scan("users", func(_ string, doc any) bool {
			if doc.(domain.User).Email == u.Email {
				dup = true
				return false
			}
			return true
		})
		if dup {
			return perr.DuplicateKeyf("Email already registered")
		}
		tx.Put("users", u.ID, u)
		return nil
	})
}

func (r *Mem) ByEmail(_ context.Context, email string) (domain.User, error) {
	var u domain.User
	found := false
	_ = r.db.View(func(tx *mem.Tx) error {
		tx.Scan("users", func(_ string, doc any) bool {
			cand := doc.(domain.User)
			if cand.Email == email {
				u, found = cand, true
				return false
			}
			return true
		})
		return nil
	})
	if !found {
		return domain.User{}, perr.NotFoundf("User not found")
	}
	return u, nil
}

func (r *Mem) ByID(_ context.Context, id string) (domain.User, error) {
	var u domain.User
	found := false
	_ = r.db.View(func(tx *mem.Tx) error {
		if doc, ok := tx.Get("users", id); ok {
			u = doc.(domain.User)
			found = true
		}
		return nil
	})
	if !found {
		return domain.User{}, perr.NotFoundf("User not found")
	}
	return u, nil
}
