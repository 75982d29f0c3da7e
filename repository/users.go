package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	auth "github.com/webafan/portfolio-auth"
)

// Users is the bun backed auth.UserStore
type Users struct {
	repository.Repository[*auth.User]
	db *bun.DB
}

var _ auth.UserStore = (*Users)(nil)

func NewUsers(db *bun.DB) *Users {
	repo := repository.NewRepository[*auth.User](db, repository.ModelHandlers[*auth.User]{
		NewRecord: func() *auth.User { return &auth.User{} },
		GetID: func(u *auth.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *auth.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &Users{
		Repository: repo,
		db:         db,
	}
}

// FindByUsername returns auth.ErrUserNotFound when no row matches. The
// match is exact and case sensitive.
func (u *Users) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return u.FindByUsernameTx(ctx, u.db, username)
}

func (u *Users) FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*auth.User, error) {
	record := &auth.User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNotFound(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user").
			WithMetadata(map[string]any{"username": username})
	}

	return record, nil
}

// Create inserts record, filling in the ID, role and timestamps
func (u *Users) Create(ctx context.Context, record *auth.User) (*auth.User, error) {
	return u.CreateTx(ctx, u.db, record)
}

func (u *Users) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User) (*auth.User, error) {
	if record == nil || strings.TrimSpace(record.Username) == "" {
		return nil, goerrors.New("username is required", goerrors.CategoryValidation)
	}
	if record.PasswordHash == "" {
		return nil, goerrors.New("password hash is required", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"username": record.Username})
	}
	if !record.PrepareDefaults().Role.IsValid() {
		return nil, goerrors.New("invalid role "+string(record.Role), goerrors.CategoryValidation).
			WithMetadata(map[string]any{"username": record.Username})
	}

	now := time.Now().UTC()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}

	created, err := u.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user").
			WithMetadata(map[string]any{"username": record.Username})
	}
	return created, nil
}

// SetActive toggles the is_active flag for username
func (u *Users) SetActive(ctx context.Context, username string, active bool) error {
	res, err := u.db.NewUpdate().
		Model((*auth.User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", time.Now().UTC()).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user").
			WithMetadata(map[string]any{"username": username})
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}
