package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/studyplan/core"
)

func (a *Adapter) CreateSession(ctx context.Context, session *core.Session) error {
	q := `INSERT INTO localauthsession (session_id, user_id, expiration) VALUES ($1, $2, $3)`
	_, err := a.pool.Exec(ctx, q, session.TokenHash, session.UserID, session.ExpiresAt)
	return err
}

func (a *Adapter) GetSessionData(ctx context.Context, tokenHash string) (*core.SessionData, error) {
	q := `SELECT s.user_id, s.expiration, u.username, i.email
		FROM localauthsession s
		JOIN localuser u ON u.id = s.user_id
		JOIN userinfo i ON i.user_id = s.user_id
		WHERE s.session_id = $1 AND u.enabled`

	session := &core.Session{TokenHash: tokenHash}
	identity := &core.Identity{}
	err := a.pool.QueryRow(ctx, q, tokenHash).Scan(&session.UserID, &session.ExpiresAt, &identity.Username, &identity.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	identity.ID = session.UserID

	return &core.SessionData{Identity: identity, Session: session}, nil
}

func (a *Adapter) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM localauthsession WHERE session_id = $1`, tokenHash)
	return err
}

func (a *Adapter) DeleteUserSessions(ctx context.Context, userID int64) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM localauthsession WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM localauthsession WHERE expiration <= $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
