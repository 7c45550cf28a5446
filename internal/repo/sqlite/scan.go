package sqlite

import (
	"context"
	"database/sql"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
)

// likeEscaper neutralizes the LIKE wildcards so a literal % or _ in a
// search query matches itself. Queries using the pattern must declare
// ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchPattern builds a contains pattern from a user search query.
func searchPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// executor is the execute/select primitive every repository runs on,
// satisfied by *sql.DB (and *sql.Tx, should one ever be threaded through).
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// eventColumns is the column list used for SELECT statements on the events table.
const eventColumns = `id, event_id, store_id, device_id, seq, type, payload, vector_clock,
	sync_status, sync_attempts, created_at, next_retry_at, last_error, synced_at`

// scanEvent scans a single row into a model.Event. The row must contain
// columns in the order defined by eventColumns.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		payload     []byte
		vectorClock []byte
		createdAt   int64
		nextRetryAt sql.NullInt64
		lastError   sql.NullString
		syncedAt    sql.NullInt64
	)

	err := row.Scan(
		&e.ID,
		&e.EventID,
		&e.StoreID,
		&e.DeviceID,
		&e.Seq,
		&e.Type,
		&payload,
		&vectorClock,
		&e.SyncStatus,
		&e.SyncAttempts,
		&createdAt,
		&nextRetryAt,
		&lastError,
		&syncedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	if len(vectorClock) > 0 {
		if err := json.Unmarshal(vectorClock, &e.VectorClock); err != nil {
			return nil, err
		}
	}
	e.CreatedAt = fromMillis(createdAt)
	e.NextRetryAt = fromMillisNull(nextRetryAt)
	e.LastError = lastError.String
	e.SyncedAt = fromMillisNull(syncedAt)

	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// scanDoc scans a (doc, …) projection: the JSON document is the source of
// truth, the denormalized columns exist only for filtering and sorting.
func scanDoc[T any](row scannable) (*T, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return nil, err
	}
	var entity T
	if err := json.Unmarshal(doc, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

func scanDocs[T any](rows *sql.Rows) ([]*T, error) {
	var out []*T
	for rows.Next() {
		entity, err := scanDoc[T](rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// payloadBytes normalizes an event payload for storage; an absent payload
// is stored as JSON null.
func payloadBytes(p json.RawMessage) []byte {
	if len(p) == 0 {
		return []byte("null")
	}
	return []byte(p)
}

// clockBytes serializes a vector clock, or nil when the event carries none.
func clockBytes(vc model.VectorClock) ([]byte, error) {
	if len(vc) == 0 {
		return nil, nil
	}
	return json.Marshal(vc)
}
