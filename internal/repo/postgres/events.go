package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
)

// EventRepo implements repo.EventRepository on PostgreSQL.
type EventRepo struct {
	db  executor
	now func() time.Time
}

// Compile-time check that EventRepo implements repo.EventRepository.
var _ repo.EventRepository = (*EventRepo)(nil)

func (r *EventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *EventRepo) Add(ctx context.Context, e *model.Event) error {
	if err := model.ValidateEvent(e); err != nil {
		return err
	}
	clock, err := clockBytes(e.VectorClock)
	if err != nil {
		return fmt.Errorf("marshal vector clock: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO events (
			event_id, store_id, device_id, seq, type, payload, vector_clock,
			sync_status, sync_attempts, created_at, next_retry_at, last_error, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		e.EventID,
		e.StoreID,
		e.DeviceID,
		e.Seq,
		e.Type,
		payloadBytes(e.Payload),
		clock,
		string(e.SyncStatus),
		e.SyncAttempts,
		e.CreatedAt,
		nullTime(e.NextRetryAt),
		nullString(e.LastError),
		nullTime(e.SyncedAt),
	).Scan(&e.ID)
	return translateErr(err)
}

// AddBatch loops single inserts; each insert is atomic on its own, so a
// failure mid-batch leaves earlier events committed and later ones
// untouched.
func (r *EventRepo) AddBatch(ctx context.Context, events []*model.Event) error {
	for _, e := range events {
		if err := r.Add(ctx, e); err != nil {
			return fmt.Errorf("add event %s: %w", e.EventID, err)
		}
	}
	return nil
}

func (r *EventRepo) GetPending(ctx context.Context, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		return nil, nil
	}

	// Phase one: fresh events first, so a retry backlog can never starve
	// new work.
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE sync_status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`,
		string(model.StatusPending), limit,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	pending, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	remaining := limit - len(pending)
	if remaining <= 0 {
		return pending, nil
	}

	// Phase two: retrying events whose retry time has elapsed.
	retryRows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE sync_status = $1 AND next_retry_at IS NOT NULL AND next_retry_at <= $2
		ORDER BY created_at ASC, id ASC
		LIMIT $3`,
		string(model.StatusRetrying), r.clock(), remaining,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	defer retryRows.Close()
	due, err := scanEvents(retryRows)
	if err != nil {
		return nil, err
	}

	return append(pending, due...), nil
}

func (r *EventRepo) FindByEventID(ctx context.Context, eventID string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_id = $1`, eventID)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EventRepo) List(ctx context.Context, status model.SyncStatus, limit int) ([]*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE sync_status = $1 ORDER BY created_at ASC, id ASC`
	args := []any{string(status)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// MarkAsSynced only touches pending and retrying rows, which makes it both
// idempotent (already-synced rows are skipped) and forward-only (a dead
// event cannot be resurrected by a late acknowledgement).
func (r *EventRepo) MarkAsSynced(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET sync_status = $1, synced_at = $2, next_retry_at = NULL
		WHERE event_id = ANY($3) AND sync_status IN ($4, $5)`,
		string(model.StatusSynced), r.clock(), pq.Array(eventIDs),
		string(model.StatusPending), string(model.StatusRetrying),
	)
	return translateErr(err)
}

func (r *EventRepo) MarkAsFailed(ctx context.Context, eventID, lastError string, nextRetryAt *time.Time, terminal bool) error {
	status := model.StatusFailed
	var retryAt sql.NullTime
	switch {
	case terminal:
		// A terminal failure ignores any supplied retry time.
		status = model.StatusDead
	case nextRetryAt != nil:
		status = model.StatusRetrying
		retryAt = nullTime(nextRetryAt)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET sync_status = $1, sync_attempts = sync_attempts + 1, last_error = $2, next_retry_at = $3
		WHERE event_id = $4 AND sync_status IN ($5, $6)`,
		string(status), lastError, retryAt, eventID,
		string(model.StatusPending), string(model.StatusRetrying),
	)
	if err != nil {
		return translateErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Either the event does not exist, or it already reached a state
		// the failure cannot move it out of; only the former is an error.
		if _, err := r.FindByEventID(ctx, eventID); err != nil {
			return err
		}
	}
	return nil
}

func (r *EventRepo) ResetFailedToPending(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET sync_status = $1, sync_attempts = 0, next_retry_at = NULL, last_error = NULL
		WHERE sync_status = $2`,
		string(model.StatusPending), string(model.StatusFailed),
	)
	if err != nil {
		return 0, translateErr(err)
	}
	return res.RowsAffected()
}

// GetLastSeq is a compound-index scan over (store_id, device_id, seq).
func (r *EventRepo) GetLastSeq(ctx context.Context, storeID, deviceID string) (int64, error) {
	var seq int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM events
		WHERE store_id = $1 AND device_id = $2`,
		storeID, deviceID,
	).Scan(&seq)
	if err != nil {
		return 0, translateErr(err)
	}
	return seq, nil
}

func (r *EventRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM events WHERE sync_status IN ($1, $2)`,
		string(model.StatusPending), string(model.StatusRetrying),
	).Scan(&n)
	if err != nil {
		return 0, translateErr(err)
	}
	return n, nil
}

func (r *EventRepo) CountByStatus(ctx context.Context) (map[model.SyncStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sync_status, COUNT(*) FROM events GROUP BY sync_status`)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	counts := make(map[model.SyncStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[model.SyncStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *EventRepo) PruneSynced(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := r.clock().Add(-maxAge)
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM events
		WHERE sync_status = $1 AND synced_at IS NOT NULL AND synced_at <= $2`,
		string(model.StatusSynced), cutoff,
	)
	if err != nil {
		return 0, translateErr(err)
	}
	return res.RowsAffected()
}
