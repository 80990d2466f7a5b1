// Package store keeps the history of answered questions in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/quiz"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS answers (
		id TEXT PRIMARY KEY,
		sessionId TEXT NOT NULL,
		root TEXT NOT NULL,
		quality TEXT NOT NULL,
		inversion INTEGER NOT NULL,
		answerRoot TEXT NOT NULL,
		answerQuality TEXT NOT NULL,
		answerInversion INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		pitchSetMatch INTEGER NOT NULL DEFAULT 0,
		elapsedMs INTEGER NOT NULL,
		answeredAt REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS answers_key ON answers (root, quality, inversion);
`

type (
	Store struct {
		db *sql.DB
	}

	Answer struct {
		ID        uuid.UUID
		SessionID uuid.UUID
		quiz.Feedback
		AnsweredAt time.Time
	}

	// KeyStats aggregates every answer given to one chord.
	KeyStats struct {
		Key        chord.Key
		Attempts   int
		Correct    int
		AvgElapsed time.Duration
	}

	Totals struct {
		Answered int
		Correct  int
		Sessions int
	}
)

// DefaultPath is history.sqlite under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "rmxchords", "history.sqlite")
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordAnswer stores one answered question.
func (s *Store) RecordAnswer(ctx context.Context, sessionID uuid.UUID, fb quiz.Feedback, at time.Time) (Answer, error) {
	a := Answer{ID: uuid.New(), SessionID: sessionID, Feedback: fb, AnsweredAt: at}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (id, sessionId, root, quality, inversion,
			answerRoot, answerQuality, answerInversion, correct, pitchSetMatch, elapsedMs, answeredAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID.String(), sessionID.String(),
		fb.Expected.Root.String(), fb.Expected.Quality.ID(), fb.Expected.Inversion,
		fb.Answer.Root.String(), fb.Answer.Quality.ID(), fb.Answer.Inversion,
		fb.Correct, fb.PitchSetMatch, fb.Elapsed.Milliseconds(), unixFromTime(at))
	if err != nil {
		return Answer{}, fmt.Errorf("insert answer: %w", err)
	}
	return a, nil
}

// Totals counts every stored answer.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var correct sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(correct), COUNT(DISTINCT sessionId) FROM answers
	`).Scan(&t.Answered, &correct, &t.Sessions)
	if err != nil {
		return Totals{}, fmt.Errorf("query totals: %w", err)
	}
	t.Correct = int(correct.Int64)
	return t, nil
}

// WeakestChords returns up to limit chords asked at least minAttempts times,
// lowest accuracy first. Ties go to the chord asked more often.
func (s *Store) WeakestChords(ctx context.Context, limit, minAttempts int) ([]KeyStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT root, quality, inversion, COUNT(*) AS attempts, SUM(correct), AVG(elapsedMs)
		FROM answers
		GROUP BY root, quality, inversion
		HAVING attempts >= ?
		ORDER BY CAST(SUM(correct) AS REAL) / COUNT(*) ASC, attempts DESC, root, quality, inversion
		LIMIT ?
	`, minAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("query weakest chords: %w", err)
	}
	defer rows.Close()

	var stats []KeyStats
	for rows.Next() {
		var (
			ks               KeyStats
			root, quality    string
			inversion        int
			avgElapsedMillis float64
		)
		if err := rows.Scan(&root, &quality, &inversion, &ks.Attempts, &ks.Correct, &avgElapsedMillis); err != nil {
			return nil, fmt.Errorf("scan chord stats: %w", err)
		}
		ks.Key, err = parseKey(root, quality, inversion)
		if err != nil {
			return nil, err
		}
		ks.AvgElapsed = time.Duration(avgElapsedMillis * float64(time.Millisecond))
		stats = append(stats, ks)
	}
	return stats, rows.Err()
}

// RecentAnswers returns the latest answers, newest first.
func (s *Store) RecentAnswers(ctx context.Context, limit int) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sessionId, root, quality, inversion, answerRoot, answerQuality, answerInversion,
			correct, pitchSetMatch, elapsedMs, answeredAt
		FROM answers
		ORDER BY answeredAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var (
			a                      Answer
			id, sessionID          string
			root, quality          string
			inversion              int
			answerRoot, answerQual string
			answerInversion        int
			elapsedMillis          int64
			answeredAt             float64
		)
		if err := rows.Scan(&id, &sessionID, &root, &quality, &inversion,
			&answerRoot, &answerQual, &answerInversion,
			&a.Correct, &a.PitchSetMatch, &elapsedMillis, &answeredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("answer id: %w", err)
		}
		if a.SessionID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("answer session id: %w", err)
		}
		if a.Expected, err = parseKey(root, quality, inversion); err != nil {
			return nil, err
		}
		if a.Answer, err = parseKey(answerRoot, answerQual, answerInversion); err != nil {
			return nil, err
		}
		a.Elapsed = time.Duration(elapsedMillis) * time.Millisecond
		a.AnsweredAt = timeFromUnix(answeredAt)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (ks KeyStats) Accuracy() float64 {
	if ks.Attempts == 0 {
		return 0
	}
	return float64(ks.Correct) / float64(ks.Attempts)
}

func parseKey(root, quality string, inversion int) (chord.Key, error) {
	r, err := pitch.ParseNote(root)
	if err != nil {
		return chord.Key{}, fmt.Errorf("stored root: %w", err)
	}
	q, err := chord.ParseQuality(quality)
	if err != nil {
		return chord.Key{}, fmt.Errorf("stored quality: %w", err)
	}
	return chord.Key{Root: r, Quality: q, Inversion: inversion}, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
