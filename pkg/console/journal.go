package console

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Journal is a best-effort sqlite record of confirmed mutations, for
// operator forensics ("who deleted that asset and when"). It is diagnostic
// only: the store never reads from it and losing the file loses nothing.
// A nil *Journal is a valid no-op.
type Journal struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// Mutation is one journaled entry.
type Mutation struct {
	ID       string
	Entity   string
	Verb     string
	EntityID int64
	Detail   string
	Time     time.Time
}

// OpenJournal opens (creating if needed) the journal at path.
func OpenJournal(path string, log *zap.SugaredLogger) (*Journal, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS mutations(id TEXT, entity TEXT, verb TEXT, entity_id INTEGER, detail TEXT, ts INTEGER); CREATE INDEX IF NOT EXISTS idx_mutations_entity ON mutations(entity, entity_id);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, log: log}, nil
}

// Record appends one entry. Failures are logged and swallowed; journaling
// never blocks or fails a mutation.
func (j *Journal) Record(entity, verb string, entityID int64, detail string) {
	if j == nil || j.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := j.db.ExecContext(ctx, `INSERT INTO mutations(id, entity, verb, entity_id, detail, ts) VALUES(?,?,?,?,?,?)`,
		uuid.NewString(), entity, verb, entityID, detail, time.Now().Unix())
	if err != nil {
		j.log.Warnf("journal write failed: %v", err)
	}
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Mutation, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rows, err := j.db.QueryContext(ctx, `SELECT id, entity, verb, entity_id, detail, ts FROM mutations ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Mutation
	for rows.Next() {
		var m Mutation
		var ts int64
		if err := rows.Scan(&m.ID, &m.Entity, &m.Verb, &m.EntityID, &m.Detail, &ts); err != nil {
			return nil, err
		}
		m.Time = time.Unix(ts, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
