// Package records keeps finished games in a sqlite database.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeu5/fights/ndarray"
	_ "modernc.org/sqlite"
)

var ErrEmptyPath = errors.New("records: empty db path")

// Game is a finished game. Winner is empty for a game without one.
type Game struct {
	ID           int64                                `json:"id"`
	SessionID    string                               `json:"session_id"`
	Width        int                                  `json:"width"`
	Height       int                                  `json:"height"`
	WinCondition int                                  `json:"win_condition"`
	Winner       string                               `json:"winner"`
	Moves        int                                  `json:"moves"`
	Board        *ndarray.NDArray[int, ndarray.Dims2] `json:"board"`
	FinishedAt   time.Time                            `json:"finished_at"`
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			win_condition INTEGER NOT NULL,
			winner TEXT NOT NULL,
			moves INTEGER NOT NULL,
			board TEXT NOT NULL,
			finished_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS games_winner ON games(winner);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts g and returns its id
func (s *Store) Record(ctx context.Context, g Game) (int64, error) {
	board, err := json.Marshal(g.Board)
	if err != nil {
		return 0, fmt.Errorf("records: encoding board: %w", err)
	}
	if g.FinishedAt.IsZero() {
		g.FinishedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games(session_id, width, height, win_condition, winner, moves, board, finished_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		g.SessionID, g.Width, g.Height, g.WinCondition, g.Winner, g.Moves, string(board), g.FinishedAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("records: inserting game: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent games first, at most limit of them
func (s *Store) List(ctx context.Context, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, width, height, win_condition, winner, moves, board, finished_at
		 FROM games ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]Game, 0)
	for rows.Next() {
		var (
			g     Game
			board string
			at    int64
		)
		if err := rows.Scan(&g.ID, &g.SessionID, &g.Width, &g.Height, &g.WinCondition, &g.Winner, &g.Moves, &board, &at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(board), &g.Board); err != nil {
			return nil, fmt.Errorf("records: decoding board of game %d: %w", g.ID, err)
		}
		g.FinishedAt = time.Unix(0, at)
		games = append(games, g)
	}
	return games, rows.Err()
}

// Stats counts games per winner. Games without a winner are counted under
// the empty string.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT winner, COUNT(*) FROM games GROUP BY winner`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var (
			winner string
			count  int
		)
		if err := rows.Scan(&winner, &count); err != nil {
			return nil, err
		}
		stats[winner] = count
	}
	return stats, rows.Err()
}
