// Package audit keeps a local sqlite log of portal operations, so a tenant
// admin can answer "who completed that booking" without upstream access.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fieldesk/internal/models"
)

type Log struct {
	db *sql.DB
}

func Open(path string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect audit database: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS portal_audit (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            tenant_id TEXT,
            session_id TEXT,
            op TEXT NOT NULL,
            subject TEXT,
            detail TEXT,
            ok BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_portal_audit_created ON portal_audit(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_portal_audit_op ON portal_audit(op)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, fmt.Errorf("create audit tables: %w", err)
		}
	}

	return &Log{db: db}, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends one entry.
func (l *Log) Record(ctx context.Context, entry models.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO portal_audit (tenant_id, session_id, op, subject, detail, ok, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := l.db.ExecContext(ctx, query,
		entry.TenantID,
		entry.SessionID,
		entry.Op,
		entry.Subject,
		entry.Detail,
		entry.OK,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > models.AuditRecentLimit {
		limit = models.AuditRecentLimit
	}

	query := `SELECT id, tenant_id, session_id, op, subject, detail, ok, created_at
              FROM portal_audit ORDER BY id DESC LIMIT ?`
	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.TenantID, &e.SessionID, &e.Op, &e.Subject, &e.Detail, &e.OK, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
