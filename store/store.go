// Package store keeps named save slots in a SQLite database. Each slot holds
// the JSON save format compressed with LZ4 and a BLAKE3 checksum of the
// uncompressed JSON, verified on load.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/nathoo/nightkeep/engine/save"
	"github.com/nathoo/nightkeep/types"
	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a slot does not exist.
	ErrNotFound = errors.New("save slot not found")
	// ErrCorrupt is returned when a slot's payload fails its checksum.
	ErrCorrupt = errors.New("save slot corrupt")
)

// Store wraps a SQLite connection holding save slots.
type Store struct {
	db  *sqlx.DB
	Log *slog.Logger
}

// Slot describes a stored save without its payload.
type Slot struct {
	ID       string `db:"id"`
	Name     string `db:"slot"`
	Day      int    `db:"day"`
	Phase    string `db:"phase"`
	Checksum string `db:"checksum"`
	Size     int    `db:"size"`
	SavedAt  int64  `db:"saved_at"` // unix milliseconds
}

// Time returns SavedAt as a time.
func (s Slot) Time() time.Time {
	return time.UnixMilli(s.SavedAt)
}

// Open opens or creates the save database at path.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows one writer; a single connection keeps slot writes ordered.
	db.SetMaxOpenConns(1)

	st := &Store{db: db, Log: slog.Default()}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	return st.db.Close()
}

func (st *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT NOT NULL,
		slot TEXT PRIMARY KEY,
		day INTEGER NOT NULL,
		phase TEXT NOT NULL,
		checksum TEXT NOT NULL,
		size INTEGER NOT NULL,
		saved_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	);`
	_, err := st.db.Exec(schema)
	return err
}

// Save writes s into slot, replacing any previous save there.
func (st *Store) Save(ctx context.Context, slot string, s *types.GameState) (Slot, error) {
	raw, err := save.Serialize(s, nil)
	if err != nil {
		return Slot{}, fmt.Errorf("save %s: %w", slot, err)
	}
	payload, err := compress(raw)
	if err != nil {
		return Slot{}, fmt.Errorf("save %s: compress: %w", slot, err)
	}

	row := Slot{
		ID:       uuid.NewString(),
		Name:     slot,
		Day:      s.Day,
		Phase:    string(s.Phase),
		Checksum: checksum(raw),
		Size:     len(raw),
		SavedAt:  time.Now().UnixMilli(),
	}
	_, err = st.db.ExecContext(ctx, `
		INSERT INTO saves (id, slot, day, phase, checksum, size, saved_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			day = excluded.day,
			phase = excluded.phase,
			checksum = excluded.checksum,
			size = excluded.size,
			saved_at = excluded.saved_at,
			payload = excluded.payload`,
		row.ID, row.Name, row.Day, row.Phase, row.Checksum, row.Size, row.SavedAt, payload)
	if err != nil {
		return Slot{}, fmt.Errorf("save %s: %w", slot, err)
	}

	st.Log.Info("game saved", "slot", slot, "day", s.Day, "phase", s.Phase,
		"bytes", len(raw), "stored", len(payload))
	return row, nil
}

// Load reads the state stored in slot.
func (st *Store) Load(ctx context.Context, slot string) (*types.GameState, error) {
	var rec struct {
		Checksum string `db:"checksum"`
		Payload  []byte `db:"payload"`
	}
	err := st.db.GetContext(ctx, &rec, `SELECT checksum, payload FROM saves WHERE slot = ?`, slot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", slot, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", slot, err)
	}

	raw, err := decompress(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %v", slot, ErrCorrupt, err)
	}
	if got := checksum(raw); got != rec.Checksum {
		st.Log.Warn("checksum mismatch", "slot", slot, "want", rec.Checksum, "got", got)
		return nil, fmt.Errorf("load %s: %w", slot, ErrCorrupt)
	}

	s, err := save.Deserialize(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", slot, err)
	}
	st.Log.Info("game loaded", "slot", slot, "day", s.Day)
	return s, nil
}

// List returns every slot, ordered by name.
func (st *Store) List(ctx context.Context) ([]Slot, error) {
	var slots []Slot
	err := st.db.SelectContext(ctx, &slots, `
		SELECT id, slot, day, phase, checksum, size, saved_at
		FROM saves ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return slots, nil
}

// Delete removes slot.
func (st *Store) Delete(ctx context.Context, slot string) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot)
	if err != nil {
		return fmt.Errorf("delete %s: %w", slot, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", slot, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", slot, ErrNotFound)
	}
	st.Log.Info("save deleted", "slot", slot)
	return nil
}

func compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(src))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
