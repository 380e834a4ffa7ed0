package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_fact_store.go -package=mocks knowledge-ai/internal/storage FactStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// tagSeparator joins tags into a single column. Tags never contain
// newlines, so this round-trips safely.
const tagSeparator = "\n"

// FactStore defines the interface for fact validation storage.
type FactStore interface {
	// Insert saves a fact for review. The fact.ID must be set (UUID)
	// before calling this method.
	Insert(ctx context.Context, fact *FactRecord) error
	// GetByID gets a fact by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*FactRecord, error)
	// ListByStatus returns facts with the given status, newest first.
	// An empty status returns all facts.
	ListByStatus(ctx context.Context, status string) ([]*FactRecord, error)
	// UpdateStatus moves a fact through the review workflow and stamps
	// the review time. Returns ErrNotFound if the fact does not exist.
	UpdateStatus(ctx context.Context, id, status string) error
}

// FactRepo provides methods for fact validation operations.
// It implements the FactStore interface.
type FactRepo struct {
	db *sql.DB
}

// NewFactRepo creates a new FactRepo.
func NewFactRepo(db *sql.DB) *FactRepo {
	return &FactRepo{db: db}
}

// Insert saves a fact for review.
func (r *FactRepo) Insert(ctx context.Context, fact *FactRecord) error {
	if fact.Status == "" {
		fact.Status = FactStatusPending
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO facts (id, content, source_context, tags, confidence, status) VALUES (?, ?, ?, ?, ?, ?)",
		fact.ID, fact.Content, fact.SourceContext, strings.Join(fact.Tags, tagSeparator), fact.Confidence, fact.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fact: %w", err)
	}
	return nil
}

// GetByID gets a fact by its ID. Returns ErrNotFound if not found.
func (r *FactRepo) GetByID(ctx context.Context, id string) (*FactRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, content, source_context, tags, confidence, status, created_at, reviewed_at FROM facts WHERE id = ?",
		id,
	)
	fact, err := scanFact(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fact: %w", err)
	}
	return fact, nil
}

// ListByStatus returns facts with the given status, newest first.
func (r *FactRepo) ListByStatus(ctx context.Context, status string) ([]*FactRecord, error) {
	query := "SELECT id, content, source_context, tags, confidence, status, created_at, reviewed_at FROM facts"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var facts []*FactRecord
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, fact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return facts, nil
}

// UpdateStatus moves a fact through the review workflow.
func (r *FactRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE facts SET status = ?, reviewed_at = ? WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update fact status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFact(s scanner) (*FactRecord, error) {
	var fact FactRecord
	var tags string
	var reviewedAt sql.NullTime
	if err := s.Scan(&fact.ID, &fact.Content, &fact.SourceContext, &tags, &fact.Confidence, &fact.Status, &fact.CreatedAt, &reviewedAt); err != nil {
		return nil, err
	}
	if tags != "" {
		fact.Tags = strings.Split(tags, tagSeparator)
	}
	if reviewedAt.Valid {
		fact.ReviewedAt = &reviewedAt.Time
	}
	return &fact, nil
}
