package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"pairpilot/embedding"
	"pairpilot/model"
)

// InsightStore persists long-term memory records and ranks them against a
// query by cosine similarity over a full table scan.
type InsightStore struct {
	db     *DB
	engine embedding.Engine
	logger *zap.Logger
	now    func() time.Time
}

func NewInsightStore(db *DB, engine embedding.Engine, logger *zap.Logger) *InsightStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightStore{
		db:     db,
		engine: engine,
		logger: logger.Named("insights"),
		now:    time.Now,
	}
}

// Save embeds text and appends it. An empty text or a failed embedding is an
// error and nothing is written.
func (s *InsightStore) Save(ctx context.Context, text string, sourceProjectID *int64) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrEmptyText
	}
	if s.engine == nil {
		return 0, fmt.Errorf("no embedding engine configured")
	}

	vec, err := embedding.Embed(ctx, s.engine, text)
	if err != nil {
		return 0, fmt.Errorf("failed to embed insight: %w", err)
	}

	var source sql.NullInt64
	if sourceProjectID != nil {
		source = sql.NullInt64{Int64: *sourceProjectID, Valid: true}
	}

	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO insights (text, embedding, source_project_id, created_at) VALUES (?, ?, ?, ?)`,
		text, embedding.EncodeVector(vec), source, formatTime(s.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to save insight: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insight id: %w", err)
	}

	s.logger.Debug("insight saved", zap.Int64("id", id), zap.Int("dims", len(vec)))
	return id, nil
}

// FindRelevant returns up to limit insights ordered by descending similarity
// to queryText. Records whose vector is malformed, of a different dimension
// than the query, or of zero magnitude are skipped. A failing embedding
// service yields an empty result and no error; only storage failures are
// returned.
func (s *InsightStore) FindRelevant(ctx context.Context, queryText string, limit int) ([]model.ScoredInsight, error) {
	if limit <= 0 || s.engine == nil {
		return nil, nil
	}

	query, err := embedding.Embed(ctx, s.engine, queryText)
	if err != nil {
		s.logger.Warn("query embedding unavailable, skipping memory recall", zap.Error(err))
		return nil, nil
	}
	if embedding.IsZero(query) {
		return nil, nil
	}

	rows, err := s.db.conn.QueryContext(ctx, `SELECT id, text, embedding FROM insights ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan insights: %w", err)
	}
	defer rows.Close()

	var (
		results    []model.ScoredInsight
		mismatched int
	)
	for rows.Next() {
		var (
			id   int64
			text string
			blob []byte
		)
		if err := rows.Scan(&id, &text, &blob); err != nil {
			return nil, fmt.Errorf("failed to read insight row: %w", err)
		}

		vec, err := embedding.DecodeVector(blob)
		if err != nil {
			s.logger.Warn("skipping corrupt insight vector", zap.Int64("id", id), zap.Error(err))
			continue
		}
		if len(vec) != len(query) {
			mismatched++
			continue
		}
		if embedding.IsZero(vec) {
			continue
		}

		sim, err := embedding.CosineSimilarity(query, vec)
		if err != nil {
			continue
		}
		results = append(results, model.ScoredInsight{ID: id, Text: text, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan insights: %w", err)
	}
	if mismatched > 0 {
		s.logger.Debug("skipped insights with mismatched dimensions",
			zap.Int("count", mismatched), zap.Int("query_dims", len(query)))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// List returns the most recent insights, newest first. A non-positive limit
// returns all of them. Embeddings are not decoded.
func (s *InsightStore) List(ctx context.Context, limit int) ([]model.InsightRecord, error) {
	q := `SELECT id, text, source_project_id, created_at FROM insights ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var records []model.InsightRecord
	for rows.Next() {
		var (
			rec     model.InsightRecord
			source  sql.NullInt64
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.Text, &source, &created); err != nil {
			return nil, fmt.Errorf("failed to read insight row: %w", err)
		}
		if source.Valid {
			id := source.Int64
			rec.SourceProjectID = &id
		}
		rec.Timestamp = parseTime(created)
		records = append(records, rec)
	}
	return records, rows.Err()
}
