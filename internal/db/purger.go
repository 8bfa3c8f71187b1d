package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartDeactivatedUserPurger removes long-deactivated users on an interval.
// A user is purged once deactivated longer than retention and every owned
// account carries a zero balance. The accounts cascade with the user row;
// recorded movements survive with their account references nulled out, so
// transaction history never blocks a purge.
func StartDeactivatedUserPurger(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
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
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM users u
                     WHERE u.active = false
                       AND u.deactivated_at < $1
                       AND NOT EXISTS (
                           SELECT 1 FROM accounts a
                            WHERE a.user_id = u.id AND a.balance_cents > 0
                       )
                `, cutoff)
				if err != nil {
					log.Error("failed to purge deactivated users", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("purged deactivated users", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
