/**
 * @description
 * This file implements the Repository interface on PostgreSQL. Memory documents
 * live in the `finance_memory` table as JSONB, one row per user_id; the raw
 * banking facts the analysis flow consumes live in `finance_profiles`.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5, pgxpool: PostgreSQL driver and connection pool.
 *
 * @notes
 * - UpsertProfile deliberately uses SELECT-then-UPDATE/INSERT rather than
 *   ON CONFLICT. The read-modify-write race between two processes writing the
 *   same user_id is an accepted limitation; in-process writers are serialized
 *   upstream with KeyedMutex.
 */

package store

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wo-aiml-user/finance-agent/internal/domain"
)

// PostgresRepository is the PostgreSQL implementation of Repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository backed by the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the memory tables if they do not exist yet. Called once
// at startup; connectivity failures here are fatal for the postgres backend.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	ddl := `
        CREATE TABLE IF NOT EXISTS finance_memory (
            id                  UUID PRIMARY KEY,
            user_id             TEXT NOT NULL UNIQUE,
            finance_profile     JSONB NOT NULL DEFAULT '{}'::jsonb,
            additional_insights JSONB NOT NULL DEFAULT '{}'::jsonb,
            profile_summary     TEXT,
            created_at          TIMESTAMPTZ NOT NULL,
            updated_at          TIMESTAMPTZ NOT NULL,
            version             INTEGER NOT NULL DEFAULT 1
        );
        CREATE TABLE IF NOT EXISTS finance_profiles (
            user_id    TEXT PRIMARY KEY,
            data       JSONB NOT NULL DEFAULT '{}'::jsonb,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
    `
	if _, err := r.db.Exec(ctx, ddl); err != nil {
		log.Printf("level=error component=store msg=\"schema ensure failed\" err=%v", err)
		return err
	}
	return nil
}

// UpsertProfile stores or replaces the memory document for a user.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, userID string, profile map[string]any, insights map[string]any, summary *string) (string, error) {
	if insights == nil {
		insights = map[string]any{}
	}
	now := time.Now().UTC()

	var (
		existingID      uuid.UUID
		existingVersion int
		createdAt       time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, version, created_at FROM finance_memory WHERE user_id = $1`,
		userID,
	).Scan(&existingID, &existingVersion, &createdAt)

	switch {
	case err == nil:
		newVersion := existingVersion + 1
		_, err = r.db.Exec(ctx,
			`UPDATE finance_memory
             SET finance_profile = $2, additional_insights = $3, profile_summary = $4,
                 updated_at = $5, version = $6
             WHERE user_id = $1`,
			userID, profile, insights, summary, now, newVersion,
		)
		if err != nil {
			log.Printf("level=error component=store msg=\"memory update failed\" user_id=%s err=%v", userID, err)
			return "", err
		}
		log.Printf("level=info component=store msg=\"memory document updated\" user_id=%s doc_id=%s version=%d", userID, existingID, newVersion)
		return existingID.String(), nil

	case errors.Is(err, pgx.ErrNoRows):
		docID := uuid.New()
		_, err = r.db.Exec(ctx,
			`INSERT INTO finance_memory
                (id, user_id, finance_profile, additional_insights, profile_summary, created_at, updated_at, version)
             VALUES ($1, $2, $3, $4, $5, $6, $6, 1)`,
			docID, userID, profile, insights, summary, now,
		)
		if err != nil {
			log.Printf("level=error component=store msg=\"memory insert failed\" user_id=%s err=%v", userID, err)
			return "", err
		}
		log.Printf("level=info component=store msg=\"memory document inserted\" user_id=%s doc_id=%s", userID, docID)
		return docID.String(), nil

	default:
		log.Printf("level=error component=store msg=\"memory lookup failed\" user_id=%s err=%v", userID, err)
		return "", err
	}
}

// GetProfile returns the memory document for a user, or (nil, nil) when missing.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*domain.ProfileDocument, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, finance_profile, additional_insights, profile_summary, created_at, updated_at, version
         FROM finance_memory WHERE user_id = $1`,
		userID,
	)
	doc, err := scanProfileDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Printf("level=error component=store msg=\"memory fetch failed\" user_id=%s err=%v", userID, err)
		return nil, err
	}
	return doc, nil
}

// ListProfiles returns every stored memory document.
func (r *PostgresRepository) ListProfiles(ctx context.Context) ([]domain.ProfileDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, finance_profile, additional_insights, profile_summary, created_at, updated_at, version
         FROM finance_memory`,
	)
	if err != nil {
		log.Printf("level=error component=store msg=\"memory list failed\" err=%v", err)
		return nil, err
	}
	defer rows.Close()

	var docs []domain.ProfileDocument
	for rows.Next() {
		doc, err := scanProfileDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// PatchInsights replaces additional_insights wholesale for an existing document.
func (r *PostgresRepository) PatchInsights(ctx context.Context, userID string, insights map[string]any) (bool, error) {
	if insights == nil {
		insights = map[string]any{}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE finance_memory
         SET additional_insights = $2, updated_at = $3, version = version + 1
         WHERE user_id = $1`,
		userID, insights, time.Now().UTC(),
	)
	if err != nil {
		log.Printf("level=error component=store msg=\"insights update failed\" user_id=%s err=%v", userID, err)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteProfile removes the memory document for a user.
func (r *PostgresRepository) DeleteProfile(ctx context.Context, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM finance_memory WHERE user_id = $1`, userID)
	if err != nil {
		log.Printf("level=error component=store msg=\"memory delete failed\" user_id=%s err=%v", userID, err)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ProfileHistory returns stored versions for a user, newest first. Only the
// current version is retained, so the result holds at most one document.
func (r *PostgresRepository) ProfileHistory(ctx context.Context, userID string, limit int) ([]domain.ProfileDocument, error) {
	if limit == 0 {
		return nil, nil
	}
	doc, err := r.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return []domain.ProfileDocument{*doc}, nil
}

// GetRawProfile returns the raw banking facts for a user.
func (r *PostgresRepository) GetRawProfile(ctx context.Context, userID string) (map[string]any, error) {
	var data map[string]any
	err := r.db.QueryRow(ctx,
		`SELECT data FROM finance_profiles WHERE user_id = $1`,
		userID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRawProfileNotFound
	}
	if err != nil {
		log.Printf("level=error component=store msg=\"raw profile fetch failed\" user_id=%s err=%v", userID, err)
		return nil, err
	}
	return data, nil
}

func scanProfileDocument(row pgx.Row) (*domain.ProfileDocument, error) {
	var doc domain.ProfileDocument
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FinanceProfile,
		&doc.AdditionalInsights,
		&doc.ProfileSummary,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.Version,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
