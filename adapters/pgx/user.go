package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/studyplan/core"
)

func (a *Adapter) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := a.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM localuser WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (a *Adapter) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := a.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM userinfo WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (a *Adapter) CreateUser(ctx context.Context, user *core.User, passwordHash string) error {
	err := pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		q := `INSERT INTO localuser (username, password_hash, enabled) VALUES ($1, $2, $3) RETURNING id`
		if err := tx.QueryRow(ctx, q, user.Username, passwordHash, user.Enabled).Scan(&user.ID); err != nil {
			return err
		}

		q = `INSERT INTO userinfo (user_id, email) VALUES ($1, $2) RETURNING created_at, updated_at`
		return tx.QueryRow(ctx, q, user.ID, user.Email).Scan(&user.CreatedAt, &user.UpdatedAt)
	})
	if err != nil {
		user.ID = 0
		if mapped := uniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (a *Adapter) GetCredentialsByUsername(ctx context.Context, username string) (*core.Credentials, error) {
	q := `SELECT u.id, u.username, COALESCE(i.email, ''), u.password_hash, u.enabled
		FROM localuser u LEFT JOIN userinfo i ON i.user_id = u.id
		WHERE u.username = $1`

	creds := &core.Credentials{}
	err := a.pool.QueryRow(ctx, q, username).Scan(&creds.UserID, &creds.Username, &creds.Email, &creds.PasswordHash, &creds.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return creds, nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	q := `SELECT u.id, u.username, i.email, u.enabled, i.created_at, i.updated_at
		FROM localuser u JOIN userinfo i ON i.user_id = u.id
		WHERE u.id = $1`

	user := &core.User{}
	err := a.pool.QueryRow(ctx, q, id).Scan(&user.ID, &user.Username, &user.Email, &user.Enabled, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
