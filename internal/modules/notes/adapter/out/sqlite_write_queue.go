package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"firedesk/internal/modules/notes/domain"
	notesout "firedesk/internal/modules/notes/port/out"

	_ "modernc.org/sqlite"
)

// serverTimestampMarker stands in for domain.ServerTimestamp in stored JSON.
const serverTimestampMarker = "$serverTimestamp"

type SQLiteWriteQueue struct {
	db *sql.DB
}

func NewSQLiteWriteQueue(dbPath string) (*SQLiteWriteQueue, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	q := &SQLiteWriteQueue{db: db}
	if err := q.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return q, nil
}

var _ notesout.WriteQueue = (*SQLiteWriteQueue)(nil)

func (q *SQLiteWriteQueue) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS pending_writes (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  collection TEXT NOT NULL,
  doc_id TEXT NOT NULL,
  fields TEXT NOT NULL,
  queued_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rejected_writes (
  seq INTEGER PRIMARY KEY,
  collection TEXT NOT NULL,
  doc_id TEXT NOT NULL,
  fields TEXT NOT NULL,
  queued_at TEXT NOT NULL,
  rejected_at TEXT NOT NULL,
  reason TEXT NOT NULL
);
`
	if _, err := q.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create queue tables: %w", err)
	}
	return nil
}

func (q *SQLiteWriteQueue) Enqueue(ctx context.Context, write domain.PendingWrite) error {
	body, err := encodeFields(write.Fields)
	if err != nil {
		return err
	}
	queuedAt := write.QueuedAt
	if queuedAt.IsZero() {
		queuedAt = time.Now()
	}
	const stmt = `INSERT INTO pending_writes (collection, doc_id, fields, queued_at) VALUES (?, ?, ?, ?)`
	if _, err := q.db.ExecContext(ctx, stmt, write.Collection, write.DocID, body, queuedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("enqueue write %s/%s: %w", write.Collection, write.DocID, err)
	}
	return nil
}

// Pending returns queued writes oldest first.
func (q *SQLiteWriteQueue) Pending(ctx context.Context) ([]domain.PendingWrite, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT seq, collection, doc_id, fields, queued_at FROM pending_writes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query pending writes: %w", err)
	}
	defer rows.Close()

	out := []domain.PendingWrite{}
	for rows.Next() {
		var (
			w        domain.PendingWrite
			body     string
			queuedAt string
		)
		if err := rows.Scan(&w.Seq, &w.Collection, &w.DocID, &body, &queuedAt); err != nil {
			return nil, fmt.Errorf("scan pending write: %w", err)
		}
		if w.Fields, err = decodeFields(body); err != nil {
			return nil, fmt.Errorf("pending write %d: %w", w.Seq, err)
		}
		w.QueuedAt, _ = time.Parse(time.RFC3339Nano, queuedAt)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (q *SQLiteWriteQueue) Count(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_writes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending writes: %w", err)
	}
	return n, nil
}

func (q *SQLiteWriteQueue) Remove(ctx context.Context, seq int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM pending_writes WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("remove pending write %d: %w", seq, err)
	}
	return nil
}

// Reject moves the pending write seq into rejected_writes in one
// transaction.
func (q *SQLiteWriteQueue) Reject(ctx context.Context, seq int64, reason string, at time.Time) (err error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reject: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const move = `INSERT OR REPLACE INTO rejected_writes (seq, collection, doc_id, fields, queued_at, rejected_at, reason)
SELECT seq, collection, doc_id, fields, queued_at, ?, ? FROM pending_writes WHERE seq = ?`
	if _, err = tx.ExecContext(ctx, move, at.UTC().Format(time.RFC3339Nano), reason, seq); err != nil {
		return fmt.Errorf("reject pending write %d: %w", seq, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM pending_writes WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("reject pending write %d: %w", seq, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reject %d: %w", seq, err)
	}
	return nil
}

// Rejected returns rejected writes in their original queue order.
func (q *SQLiteWriteQueue) Rejected(ctx context.Context) ([]domain.RejectedWrite, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT seq, collection, doc_id, fields, queued_at, rejected_at, reason FROM rejected_writes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query rejected writes: %w", err)
	}
	defer rows.Close()

	out := []domain.RejectedWrite{}
	for rows.Next() {
		var (
			w                    domain.RejectedWrite
			body                 string
			queuedAt, rejectedAt string
		)
		if err := rows.Scan(&w.Seq, &w.Collection, &w.DocID, &body, &queuedAt, &rejectedAt, &w.Reason); err != nil {
			return nil, fmt.Errorf("scan rejected write: %w", err)
		}
		if w.Fields, err = decodeFields(body); err != nil {
			return nil, fmt.Errorf("rejected write %d: %w", w.Seq, err)
		}
		w.QueuedAt, _ = time.Parse(time.RFC3339Nano, queuedAt)
		w.RejectedAt, _ = time.Parse(time.RFC3339Nano, rejectedAt)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (q *SQLiteWriteQueue) Close() error {
	return q.db.Close()
}

func encodeFields(fields domain.Fields) (string, error) {
	plain := make(map[string]any, len(fields))
	for k, v := range fields {
		if domain.IsServerTimestamp(v) {
			plain[k] = map[string]any{serverTimestampMarker: true}
			continue
		}
		plain[k] = v
	}
	body, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(body), nil
}

func decodeFields(body string) (domain.Fields, error) {
	var plain map[string]any
	if err := json.Unmarshal([]byte(body), &plain); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	fields := make(domain.Fields, len(plain))
	for k, v := range plain {
		if m, ok := v.(map[string]any); ok && len(m) == 1 && m[serverTimestampMarker] == true {
			fields[k] = domain.ServerTimestamp
			continue
		}
		fields[k] = v
	}
	return fields, nil
}
