package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Record 一次预测的审计记录
type Record struct {
	ID         string    `json:"id"`
	Age        int       `json:"age"`
	HeightCm   float64   `json:"height_cm"`
	WeightKg   float64   `json:"weight_kg"`
	FCVC       int       `json:"fcvc"`
	ClassIndex int       `json:"class_index"`
	Level      string    `json:"level"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store SQLite预测日志
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite database at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	database.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id TEXT PRIMARY KEY,
        age INTEGER NOT NULL,
        height_cm REAL NOT NULL,
        weight_kg REAL NOT NULL,
        fcvc INTEGER NOT NULL,
        class_index INTEGER NOT NULL,
        level TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}
	return &Store{db: database}, nil
}

// SavePrediction 保存预测记录，ID和时间为空时自动生成
func (s *Store) SavePrediction(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO predictions (id, age, height_cm, weight_kg, fcvc, class_index, level, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Age, record.HeightCm, record.WeightKg, record.FCVC,
		record.ClassIndex, record.Level, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// RecentPredictions 查询最近的预测记录，按时间倒序
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, age, height_cm, weight_kg, fcvc, class_index, level, created_at
        FROM predictions
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Age, &r.HeightCm, &r.WeightKg, &r.FCVC, &r.ClassIndex, &r.Level, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountByLevel 按肥胖等级统计预测次数
func (s *Store) CountByLevel(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT level, COUNT(*) FROM predictions GROUP BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		counts[level] = count
	}
	return counts, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
