package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartActivationCodeCleaner clears expired activation codes with interval.
// Accounts stay unactivated; only the dead code and its deadline are removed
// so a stale code can never be presented later.
func StartActivationCodeCleaner(
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
                    UPDATE accounts
                       SET activation_code = NULL,
                           activation_expires = NULL
                     WHERE activated = FALSE
                       AND activation_expires IS NOT NULL
                       AND activation_expires < NOW()
                `)
				if err != nil {
					log.Error("failed to clean expired activation codes", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired activation codes", zap.Int64("accounts", rows))
				}
			}
		}
	}()
}
