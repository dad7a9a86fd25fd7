package audit

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// Repository writes audit logs.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Log writes an audit entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	entry = normalize(entry)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO audit_logs (
	id, actor, role, action, resource_type, resource_id, outcome,
	metadata, payload_digest, ip, user_agent, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)`, entry.ID, entry.Actor, entry.Role, entry.Action, entry.ResourceType, entry.ResourceID, entry.Outcome,
		entry.Metadata, entry.PayloadDigest, entry.IP, entry.UserAgent, entry.CreatedAt)
	return err
}

// MemoryLog keeps audit entries in memory for demo/testing.
type MemoryLog struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryLog constructs an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Log appends an entry.
func (l *MemoryLog) Log(ctx context.Context, entry Entry) error {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, normalize(entry))
	return nil
}

// Entries returns a copy of the recorded entries.
func (l *MemoryLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}
