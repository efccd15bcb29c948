package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/ai-health-analyze/internal/model"
)

// MaxHistoryLimit caps how many analyses a single history request returns.
const MaxHistoryLimit = 100

// AnalysisRepo stores structured analyses for signed-in users.
type AnalysisRepo struct{ DB *sql.DB }

func NewAnalysisRepo(db *sql.DB) *AnalysisRepo { return &AnalysisRepo{DB: db} }

// Insert stores a. Re-delivered events with the same EventID are ignored.
func (r *AnalysisRepo) Insert(ctx context.Context, a model.Analysis) error {
	flags, err := json.Marshal(nonNilStrings(a.Flags))
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	metrics := a.Metrics
	if len(metrics) == 0 {
		metrics = json.RawMessage("{}")
	}
	var userID sql.NullInt64
	if a.UserID != nil {
		userID = sql.NullInt64{Int64: int64(*a.UserID), Valid: true}
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT IGNORE INTO health_analyses (event_id, user_id, metrics, flags, analysis, degraded, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		a.EventID, userID, []byte(metrics), flags, a.Analysis, a.Degraded, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// ListByUser returns the newest analyses of userID first.
func (r *AnalysisRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Analysis, error) {
	limit = ClampLimit(limit)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, event_id, user_id, metrics, flags, analysis, degraded, created_at
		 FROM health_analyses WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	out := make([]model.Analysis, 0, limit)
	for rows.Next() {
		var (
			a       model.Analysis
			uid     sql.NullInt64
			metrics []byte
			flags   []byte
		)
		if err := rows.Scan(&a.ID, &a.EventID, &uid, &metrics, &flags, &a.Analysis, &a.Degraded, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		if uid.Valid {
			u := uint64(uid.Int64)
			a.UserID = &u
		}
		a.Metrics = json.RawMessage(metrics)
		if err := json.Unmarshal(flags, &a.Flags); err != nil {
			return nil, fmt.Errorf("decode flags of analysis %d: %w", a.ID, err)
		}
		a.Flags = nonNilStrings(a.Flags)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ClampLimit keeps a requested page size within 1..MaxHistoryLimit,
// defaulting to 20.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
