package recorder

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/relabs-tech/em_tracker/internal/format"
)

const schema = `
	CREATE TABLE IF NOT EXISTS samples (
		session_id        TEXT NOT NULL,
		t_ms              BIGINT NOT NULL,
		sensor_id         INTEGER NOT NULL,
		x                 DOUBLE NOT NULL,
		y                 DOUBLE NOT NULL,
		z                 DOUBLE NOT NULL,
		azimuth           DOUBLE NOT NULL,
		elevation         DOUBLE NOT NULL,
		roll              DOUBLE NOT NULL,
		quality           INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_samples_session_t ON samples(session_id, t_ms);
`

// Store spools captured frames into a sqlite database, one row per sensor
// per frame, tagged with the capture session id.
type Store struct {
	db      *sql.DB
	session string
}

// Open opens (creating if needed) the database at path for the given
// session.
func Open(path, session string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open recorder db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create recorder schema: %w", err)
	}
	return &Store{db: db, session: session}, nil
}

// WriteFrame inserts every sensor of one frame in a single transaction, so
// a frame is either fully recorded or not at all.
func (s *Store) WriteFrame(rec format.FrameRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin frame tx: %w", err)
	}

	for idStr, sensor := range rec.Sensors {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("bad sensor id %q: %w", idStr, err)
		}
		_, err = tx.Exec(
			`INSERT INTO samples (session_id, t_ms, sensor_id, x, y, z, azimuth, elevation, roll, quality)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.session, rec.T, id,
			sensor.Pos[0], sensor.Pos[1], sensor.Pos[2],
			sensor.Ori[0], sensor.Ori[1], sensor.Ori[2],
			sensor.Q,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert sample: %w", err)
		}
	}

	return tx.Commit()
}

// Count returns the number of sample rows stored for this session.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM samples WHERE session_id = ?`, s.session,
	).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
