package state

import (
	"context"
	"log"
	"time"

	"tuluyen/internal/storage"
)

// Autosave flushes the latest committed snapshot on a fixed interval until
// ctx is done. Storage faults are logged and never interrupt the session;
// the next cycle retries unconditionally.
func Autosave(ctx context.Context, st *Store, store storage.Store, interval time.Duration, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final best-effort flush; ctx is already canceled, so use a
			// fresh one for the writes themselves.
			if err := Save(context.Background(), store, st.Snapshot()); err != nil {
				logger.Printf("[autosave] final flush: %v", err)
			}
			return
		case <-ticker.C:
			if err := Save(ctx, store, st.Snapshot()); err != nil {
				logger.Printf("[autosave] flush failed: %v", err)
			}
		}
	}
}
