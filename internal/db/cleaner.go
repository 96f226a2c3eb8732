package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartRevokedTokenCleaner deletes expired revocation-list rows with interval.
// Rows exist only to reject rotated refresh tokens before their natural
// expiry; once expired they validate nowhere and can be dropped.
func StartRevokedTokenCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM revoked_tokens
                     WHERE expires_at < $1
                `, time.Now())
				if err != nil {
					log.Error("failed to clean expired revoked tokens", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired revoked tokens", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
