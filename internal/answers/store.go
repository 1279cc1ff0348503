// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answers persists questionnaire answers per project. Answers are
// the input to generation; generated documents are never stored here.
package answers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/documint/pkg/types"
)

const dbFile = "answers.db"

// ErrNotFound is returned when a project has no stored answers.
var ErrNotFound = errors.New("project not found")

// Store manages the answers SQLite database.
type Store struct {
	db *sql.DB
}

// ProjectInfo summarizes one stored project.
type ProjectInfo struct {
	Name      string
	Answers   int
	UpdatedAt time.Time
}

// Open opens or creates dir/answers.db and its schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			name TEXT PRIMARY KEY,
			context TEXT NOT NULL DEFAULT '{}',
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			project TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
			question_id INTEGER NOT NULL,
			answer TEXT NOT NULL,
			PRIMARY KEY (project, question_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored answers of project, keeping its context.
func (s *Store) Save(ctx context.Context, project string, answers types.AnswerSet) error {
	return s.save(ctx, project, nil, answers)
}

// SaveFile stores an answer file: its project context and its answers.
func (s *Store) SaveFile(ctx context.Context, f File) error {
	if f.Context == nil {
		f.Context = map[string]string{}
	}
	return s.save(ctx, f.Project, f.Context, f.Answers)
}

func (s *Store) save(ctx context.Context, project string, projectCtx map[string]string, answers types.AnswerSet) error {
	project = strings.TrimSpace(project)
	if project == "" {
		return errors.New("project name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if projectCtx != nil {
		ctxJSON, err := json.Marshal(projectCtx)
		if err != nil {
			return fmt.Errorf("encoding context: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO projects (name, context, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET context=excluded.context, updated_at=excluded.updated_at`,
			project, string(ctxJSON), now)
		if err != nil {
			return fmt.Errorf("upserting project: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO projects (name, updated_at) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET updated_at=excluded.updated_at`,
			project, now)
		if err != nil {
			return fmt.Errorf("upserting project: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE project = ?`, project); err != nil {
		return fmt.Errorf("deleting old answers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO answers (project, question_id, answer) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for id, answer := range answers {
		if _, err := stmt.ExecContext(ctx, project, id, answer); err != nil {
			return fmt.Errorf("inserting answer %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// Load returns the stored answers of project. It returns ErrNotFound when
// the project does not exist.
func (s *Store) Load(ctx context.Context, project string) (types.AnswerSet, error) {
	f, err := s.LoadFile(ctx, project)
	if err != nil {
		return nil, err
	}
	return f.Answers, nil
}

// LoadFile returns the stored project as an answer file.
func (s *Store) LoadFile(ctx context.Context, project string) (File, error) {
	project = strings.TrimSpace(project)

	var ctxJSON string
	err := s.db.QueryRowContext(ctx, `SELECT context FROM projects WHERE name = ?`, project).Scan(&ctxJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return File{}, fmt.Errorf("%w: %s", ErrNotFound, project)
	}
	if err != nil {
		return File{}, fmt.Errorf("loading project: %w", err)
	}

	f := File{Project: project, Answers: types.AnswerSet{}}
	if err := json.Unmarshal([]byte(ctxJSON), &f.Context); err != nil {
		return File{}, fmt.Errorf("decoding context: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, answer FROM answers WHERE project = ? ORDER BY question_id`, project)
	if err != nil {
		return File{}, fmt.Errorf("querying answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int
			answer string
		)
		if err := rows.Scan(&id, &answer); err != nil {
			return File{}, fmt.Errorf("scanning answer: %w", err)
		}
		f.Answers[id] = answer
	}
	return f, rows.Err()
}

// Projects lists stored projects by name.
func (s *Store) Projects(ctx context.Context) ([]ProjectInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.name, p.updated_at, count(a.question_id)
		 FROM projects p LEFT JOIN answers a ON a.project = p.name
		 GROUP BY p.name ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectInfo
	for rows.Next() {
		var (
			info    ProjectInfo
			updated string
		)
		if err := rows.Scan(&info.Name, &updated, &info.Answers); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes project and its answers.
func (s *Store) Delete(ctx context.Context, project string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, strings.TrimSpace(project))
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, project)
	}
	return nil
}

// ImportSummary holds counts from an import run.
type ImportSummary struct {
	Imported int
	Failed   int
}

// Total returns the number of files processed.
func (s ImportSummary) Total() int {
	return s.Imported + s.Failed
}

// Import reads each answer file and stores it under its project name,
// reporting progress to w. A file that cannot be read or has no project
// name is counted as failed; the rest still import.
func (s *Store) Import(ctx context.Context, paths []string, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		f, err := ReadYAML(path)
		if err == nil {
			err = s.SaveFile(ctx, f)
		}
		if err != nil {
			fmt.Fprintf(w, "failed   %s: %v\n", path, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "imported %s (%d answers)\n", f.Project, len(f.Answers))
		summary.Imported++
	}

	fmt.Fprintf(w, "\nimported: %d, failed: %d\n", summary.Imported, summary.Failed)
	return summary, nil
}
