package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// postgresSchema creates the tables this package reads and writes
const postgresSchema = `
CREATE TABLE IF NOT EXISTS companies (
	id      UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id UUID NOT NULL,
	name    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS roles (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id    UUID NOT NULL,
	company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	specialty  TEXT,
	start_date DATE,
	end_date   DATE,
	is_current BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS experiences (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id    UUID NOT NULL,
	role_id    UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	situation  TEXT,
	task       TEXT,
	action     TEXT NOT NULL,
	result     TEXT NOT NULL,
	tags       TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS experiences_user_idx ON experiences (user_id);
CREATE TABLE IF NOT EXISTS education (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id    UUID NOT NULL,
	school     TEXT NOT NULL,
	degree     TEXT,
	field      TEXT,
	start_date DATE,
	end_date   DATE
);
CREATE INDEX IF NOT EXISTS education_user_idx ON education (user_id);
CREATE TABLE IF NOT EXISTS analyses (
	id            UUID PRIMARY KEY,
	user_id       UUID NOT NULL,
	job_title     TEXT,
	overall_score INTEGER NOT NULL,
	is_fit        BOOLEAN NOT NULL,
	result        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS analyses_user_idx ON analyses (user_id, created_at DESC);
`

// Migrate creates any missing tables
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// FetchExperiences returns the user's experiences joined with their role and company,
// most recent role first
func (db *DB) FetchExperiences(ctx context.Context, userID string) ([]types.Experience, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx,
		`SELECT e.id::text, e.title, e.situation, e.task, e.action, e.result, e.tags,
		        r.id::text, r.title, COALESCE(r.specialty, ''), r.start_date, r.end_date, r.is_current,
		        c.id::text, c.name
		 FROM experiences e
		 JOIN roles r ON r.id = e.role_id
		 JOIN companies c ON c.id = r.company_id
		 WHERE e.user_id = $1
		 ORDER BY r.start_date DESC NULLS LAST, e.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch experiences: %w", err)
	}
	defer rows.Close()

	var experiences []types.Experience
	for rows.Next() {
		var exp types.Experience
		var start, end *time.Time
		if err := rows.Scan(
			&exp.ID, &exp.Title, &exp.Situation, &exp.Task, &exp.Action, &exp.Result, &exp.Tags,
			&exp.Role.ID, &exp.Role.Title, &exp.Role.Specialty, &start, &end, &exp.Role.IsCurrent,
			&exp.Role.Company.ID, &exp.Role.Company.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		exp.Role.StartDate = toDate(start)
		exp.Role.EndDate = toDate(end)
		experiences = append(experiences, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating experiences: %w", err)
	}
	return experiences, nil
}

// FetchEducation returns the user's education records
func (db *DB) FetchEducation(ctx context.Context, userID string) ([]types.Education, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id::text, school, COALESCE(degree, ''), COALESCE(field, ''), start_date, end_date
		 FROM education
		 WHERE user_id = $1
		 ORDER BY end_date DESC NULLS FIRST`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch education: %w", err)
	}
	defer rows.Close()

	var education []types.Education
	for rows.Next() {
		var edu types.Education
		var start, end *time.Time
		if err := rows.Scan(&edu.ID, &edu.School, &edu.Degree, &edu.Field, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan education: %w", err)
		}
		edu.StartDate = toDate(start)
		edu.EndDate = toDate(end)
		education = append(education, edu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating education: %w", err)
	}
	return education, nil
}

// SaveAnalysis inserts a finished analysis. The ID is assigned when empty.
func (db *DB) SaveAnalysis(ctx context.Context, result *types.AnalysisResult) error {
	if err := checkUserID(result.UserID); err != nil {
		return err
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}

	content, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	score, isFit := 0, false
	if result.Match != nil {
		score, isFit = result.Match.OverallScore, result.Match.IsFit
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO analyses (id, user_id, job_title, overall_score, is_fit, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.ID, result.UserID, result.JobTitle, score, isFit, content, createdAt(result),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func toDate(t *time.Time) *types.Date {
	if t == nil || t.IsZero() {
		return nil
	}
	return &types.Date{Time: t.UTC()}
}

func createdAt(result *types.AnalysisResult) time.Time {
	if result.CreatedAt.IsZero() {
		return time.Now().UTC()
	}
	return result.CreatedAt
}
