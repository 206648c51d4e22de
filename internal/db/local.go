package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// LocalDB is a single-file SQLite store for offline use of the CLI
type LocalDB struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS companies (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name    TEXT NOT NULL,
	UNIQUE (user_id, name)
);
CREATE TABLE IF NOT EXISTS roles (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	specialty  TEXT NOT NULL DEFAULT '',
	start_date TEXT,
	end_date   TEXT,
	is_current INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS experiences (
	id        TEXT PRIMARY KEY,
	user_id   TEXT NOT NULL,
	role_id   TEXT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	title     TEXT NOT NULL,
	situation TEXT,
	task      TEXT,
	action    TEXT NOT NULL,
	result    TEXT NOT NULL,
	tags      TEXT NOT NULL DEFAULT '[]',
	position  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS experiences_user_idx ON experiences (user_id);
CREATE TABLE IF NOT EXISTS education (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	school     TEXT NOT NULL,
	degree     TEXT NOT NULL DEFAULT '',
	field      TEXT NOT NULL DEFAULT '',
	start_date TEXT,
	end_date   TEXT,
	position   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS analyses (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	job_title     TEXT,
	overall_score INTEGER NOT NULL,
	is_fit        INTEGER NOT NULL,
	result        TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
`

// OpenLocal opens (or creates) the SQLite database at path
func OpenLocal(path string) (*LocalDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("local db: mkdir %s: %w", dir, err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("local db: open: %w", err)
	}
	conn.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("local db: enable foreign keys: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("local db: init schema: %w", err)
	}
	return &LocalDB{db: conn}, nil
}

// Close closes the database
func (l *LocalDB) Close() error {
	return l.db.Close()
}

// FetchExperiences returns the user's experiences with role and company, most recent role first
func (l *LocalDB) FetchExperiences(ctx context.Context, userID string) ([]types.Experience, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT e.id, e.title, e.situation, e.task, e.action, e.result, e.tags,
		        r.id, r.title, r.specialty, r.start_date, r.end_date, r.is_current,
		        c.id, c.name
		 FROM experiences e
		 JOIN roles r ON r.id = e.role_id
		 JOIN companies c ON c.id = r.company_id
		 WHERE e.user_id = ?
		 ORDER BY r.start_date IS NULL, r.start_date DESC, e.position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("local db: fetch experiences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var experiences []types.Experience
	for rows.Next() {
		var (
			exp             types.Experience
			situation, task sql.NullString
			start, end      sql.NullString
			tags            string
		)
		if err := rows.Scan(
			&exp.ID, &exp.Title, &situation, &task, &exp.Action, &exp.Result, &tags,
			&exp.Role.ID, &exp.Role.Title, &exp.Role.Specialty, &start, &end, &exp.Role.IsCurrent,
			&exp.Role.Company.ID, &exp.Role.Company.Name,
		); err != nil {
			return nil, fmt.Errorf("local db: scan experience: %w", err)
		}
		exp.Situation = nullableString(situation)
		exp.Task = nullableString(task)
		if err := json.Unmarshal([]byte(tags), &exp.Tags); err != nil {
			return nil, fmt.Errorf("local db: decode tags of %s: %w", exp.ID, err)
		}
		if exp.Role.StartDate, err = parseNullDate(start); err != nil {
			return nil, err
		}
		if exp.Role.EndDate, err = parseNullDate(end); err != nil {
			return nil, err
		}
		experiences = append(experiences, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("local db: iterate experiences: %w", err)
	}
	return experiences, nil
}

// FetchEducation returns the user's education records in import order
func (l *LocalDB) FetchEducation(ctx context.Context, userID string) ([]types.Education, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, school, degree, field, start_date, end_date
		 FROM education WHERE user_id = ? ORDER BY position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("local db: fetch education: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var education []types.Education
	for rows.Next() {
		var edu types.Education
		var start, end sql.NullString
		if err := rows.Scan(&edu.ID, &edu.School, &edu.Degree, &edu.Field, &start, &end); err != nil {
			return nil, fmt.Errorf("local db: scan education: %w", err)
		}
		if edu.StartDate, err = parseNullDate(start); err != nil {
			return nil, err
		}
		if edu.EndDate, err = parseNullDate(end); err != nil {
			return nil, err
		}
		education = append(education, edu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("local db: iterate education: %w", err)
	}
	return education, nil
}

// SaveAnalysis inserts a finished analysis. The ID is assigned when empty.
func (l *LocalDB) SaveAnalysis(ctx context.Context, result *types.AnalysisResult) error {
	if err := checkUserID(result.UserID); err != nil {
		return err
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	content, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("local db: marshal analysis: %w", err)
	}

	score, isFit := 0, false
	if result.Match != nil {
		score, isFit = result.Match.OverallScore, result.Match.IsFit
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO analyses (id, user_id, job_title, overall_score, is_fit, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.UserID, result.JobTitle, score, isFit, string(content), createdAt(result).Format("2006-01-02T15:04:05Z07:00"),
	)
	if err != nil {
		return fmt.Errorf("local db: save analysis: %w", err)
	}
	return nil
}

// ImportBank replaces the user's experiences and education with the bank's contents.
// Companies and roles are created from the experiences' embedded role records; missing
// IDs are generated.
func (l *LocalDB) ImportBank(ctx context.Context, bank *types.ExperienceBank) (*ImportStats, error) {
	if bank == nil {
		return nil, errors.New("local db: nil experience bank")
	}
	if err := checkUserID(bank.UserID); err != nil {
		return nil, err
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("local db: begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"experiences", "roles", "companies", "education"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", bank.UserID); err != nil {
			return nil, fmt.Errorf("local db: clear %s: %w", table, err)
		}
	}

	stats := &ImportStats{}
	companies := make(map[string]string)
	roles := make(map[string]string)

	for i, exp := range bank.Experiences {
		companyID, ok := companies[exp.Role.Company.Name]
		if !ok {
			companyID = orNewID(exp.Role.Company.ID)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO companies (id, user_id, name) VALUES (?, ?, ?)`,
				companyID, bank.UserID, exp.Role.Company.Name,
			); err != nil {
				return nil, fmt.Errorf("local db: insert company %q: %w", exp.Role.Company.Name, err)
			}
			companies[exp.Role.Company.Name] = companyID
			stats.Companies++
		}

		roleKey := exp.Role.Key()
		roleID, ok := roles[roleKey]
		if !ok {
			roleID = orNewID(exp.Role.ID)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO roles (id, user_id, company_id, title, specialty, start_date, end_date, is_current)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				roleID, bank.UserID, companyID, exp.Role.Title, exp.Role.Specialty,
				dateValue(exp.Role.StartDate), dateValue(exp.Role.EndDate), exp.Role.IsCurrent,
			); err != nil {
				return nil, fmt.Errorf("local db: insert role %q: %w", roleKey, err)
			}
			roles[roleKey] = roleID
			stats.Roles++
		}

		tags := exp.Tags
		if tags == nil {
			tags = []string{}
		}
		tagJSON, err := json.Marshal(tags)
		if err != nil {
			return nil, fmt.Errorf("local db: encode tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO experiences (id, user_id, role_id, title, situation, task, action, result, tags, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			orNewID(exp.ID), bank.UserID, roleID, exp.Title, exp.Situation, exp.Task,
			exp.Action, exp.Result, string(tagJSON), i,
		); err != nil {
			return nil, fmt.Errorf("local db: insert experience %q: %w", exp.Title, err)
		}
		stats.Experiences++
	}

	for i, edu := range bank.Education {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO education (id, user_id, school, degree, field, start_date, end_date, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			orNewID(edu.ID), bank.UserID, edu.School, edu.Degree, edu.Field,
			dateValue(edu.StartDate), dateValue(edu.EndDate), i,
		); err != nil {
			return nil, fmt.Errorf("local db: insert education %q: %w", edu.School, err)
		}
		stats.Education++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("local db: commit import: %w", err)
	}
	return stats, nil
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func dateValue(d *types.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func parseNullDate(s sql.NullString) (*types.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := types.ParseDate(s.String)
	if err != nil {
		return nil, fmt.Errorf("local db: %w", err)
	}
	return d, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
