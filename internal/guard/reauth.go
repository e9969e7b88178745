package guard

import (
	"context"
	"time"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	MaxReauthAttempts = 5
	ReauthLockWindow  = 15 * time.Minute
)

// RecordReauthAttempt inserts a re-authentication attempt row for a
// suspended session.
func RecordReauthAttempt(ctx context.Context, pool *pgxpool.Pool, sessionID, userID, ip string, success bool) {
	_, _ = pool.Exec(ctx, `
		INSERT INTO reauth_attempts (session_id, user_id, ip_address, success)
		VALUES ($1, $2, $3, $4)`,
		sessionID, userID, ip, success)
}

// CheckReauthLocked returns ErrForbidden if the session has accumulated
// >= MaxReauthAttempts failed re-authentications within the lock window.
func CheckReauthLocked(ctx context.Context, pool *pgxpool.Pool, sessionID string) error {
	var count int
	err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM reauth_attempts
		WHERE session_id = $1 AND success = false
		  AND created_at > $2`,
		sessionID, time.Now().Add(-ReauthLockWindow)).Scan(&count)
	if err != nil {
		return nil // fail open on DB error — suspension already gates access
	}
	if count >= MaxReauthAttempts {
		return domain.ErrForbidden("too many failed re-authentication attempts, session locked")
	}
	return nil
}
