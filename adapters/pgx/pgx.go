package pgx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/studyplan"
	"github.com/lborres/studyplan/core"
)

const pgUniqueViolation = "23505"

type Adapter struct {
	pool *pgxpool.Pool
}

var _ studyplan.StorageAdapter = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// uniqueViolation maps a lost registration race to the same sentinel the
// pre-insert check would have returned.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case "localuser_username_key":
		return core.ErrUsernameExists
	case "userinfo_email_key":
		return core.ErrEmailExists
	}
	return err
}
