package sampledata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "marketpulse/internal/common/errors"

	"github.com/lib/pq"
)

// Store reads and writes the per-user collections a seed touches.
type Store interface {
	// PersonaIDs lists userID's personas, oldest first.
	PersonaIDs(ctx context.Context, userID string) ([]string, error)
	UpdatePersonaProfile(ctx context.Context, personaID string, demographics, behaviors map[string]interface{}) error
	// Seed writes sample for userID atomically. Failures are *apperrors.SeedError.
	Seed(ctx context.Context, userID string, sample Sample) error
}

const (
	selectPersonaIDs = `SELECT id FROM personas WHERE user_id = $1 ORDER BY created_at, id`

	updatePersonaProfile = `UPDATE personas SET demographics = $2, behaviors = $3, updated_at = now() WHERE id = $1`

	insertPersona = `INSERT INTO personas (user_id, name, segment, demographics, psychographics, behaviors, goals, pain_points)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	insertMarketData = `INSERT INTO market_data (user_id, brand_name, category, gold_price, silver_price, social_media_activity, engagement_metrics, major_update, product_innovation)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	insertContent = `INSERT INTO content (user_id, persona_id, type, status, title, description, content_text, hashtags, scheduled_for)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

// PostgresStore seeds the Postgres tables created by the embedded migrations.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) PersonaIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectPersonaIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("select personas: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan persona id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select personas: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) UpdatePersonaProfile(ctx context.Context, personaID string, demographics, behaviors map[string]interface{}) error {
	demo, err := jsonb(demographics)
	if err != nil {
		return err
	}
	beh, err := jsonb(behaviors)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, updatePersonaProfile, personaID, demo, beh); err != nil {
		return fmt.Errorf("update persona %s: %w", personaID, err)
	}
	return nil
}

func (s *PostgresStore) Seed(ctx context.Context, userID string, sample Sample) error {
	fail := func(stage string, err error) error {
		return &apperrors.SeedError{UserID: userID, Stage: stage, Cause: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail("transaction", err)
	}
	defer tx.Rollback()

	personaIDs := make([]string, 0, len(sample.Personas))
	for _, p := range sample.Personas {
		args, err := jsonbArgs(p.Demographics, p.Psychographics, p.Behaviors)
		if err != nil {
			return fail("personas", err)
		}
		var id string
		err = tx.QueryRowContext(ctx, insertPersona,
			userID, p.Name, p.Segment, args[0], args[1], args[2], pq.Array(p.Goals), pq.Array(p.PainPoints),
		).Scan(&id)
		if err != nil {
			return fail("personas", err)
		}
		personaIDs = append(personaIDs, id)
	}

	for _, m := range sample.MarketData {
		args, err := jsonbArgs(m.SocialMediaActivity, m.EngagementMetrics)
		if err != nil {
			return fail("market_data", err)
		}
		_, err = tx.ExecContext(ctx, insertMarketData,
			userID, m.BrandName, m.Category, m.GoldPrice, m.SilverPrice, args[0], args[1], m.MajorUpdate, m.ProductInnovation,
		)
		if err != nil {
			return fail("market_data", err)
		}
	}

	for _, c := range sample.Content {
		var personaID interface{}
		if c.PersonaIndex >= 0 && c.PersonaIndex < len(personaIDs) {
			personaID = personaIDs[c.PersonaIndex]
		}
		_, err = tx.ExecContext(ctx, insertContent,
			userID, personaID, c.Type, c.Status, c.Title, c.Description, c.ContentText, pq.Array(c.Hashtags), c.ScheduledFor,
		)
		if err != nil {
			return fail("content", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fail("transaction", err)
	}
	return nil
}

// jsonb encodes v for a JSONB parameter.
func jsonb(v map[string]interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode jsonb: %w", err)
	}
	return string(raw), nil
}

func jsonbArgs(values ...map[string]interface{}) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		s, err := jsonb(v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
