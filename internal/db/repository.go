// Package db archives scored runs in SQLite. Analysis itself never reads it back.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"docx_forensics/internal/forensics"
)

type DocumentRecord struct {
	Name           string
	Kind           string
	Author         string
	LastModifiedBy string
	Suspicion      *forensics.Result
	// BatchSuspicion is nil for single-document runs.
	BatchSuspicion *forensics.Result
}

type RunRecord struct {
	ID              string
	CreatedAt       time.Time
	MaxScore        int
	Documents       []DocumentRecord
	SharedRevisions map[string][]string
}

type RunSummary struct {
	ID          string
	CreatedAt   time.Time
	Documents   int
	MaxScore    int
	TopDocument string
	TopScore    float64
}

func PersistRun(dbPath string, run RunRecord) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs(id, created_at, document_count, max_score) VALUES(?,?,?,?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), len(run.Documents), run.MaxScore,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, d := range run.Documents {
		if d.Suspicion == nil {
			return fmt.Errorf("document %q has no result", d.Name)
		}
		summary, _ := json.Marshal(d.Suspicion.Statistics)
		var batchRaw sql.NullInt64
		var batchScore sql.NullFloat64
		if d.BatchSuspicion != nil {
			batchRaw = sql.NullInt64{Int64: int64(d.BatchSuspicion.RawScore), Valid: true}
			batchScore = sql.NullFloat64{Float64: d.BatchSuspicion.NormalizedScore, Valid: true}
		}
		res, err := tx.Exec(
			`INSERT INTO documents(run_id, name, kind, author, last_modified_by, raw_score, score, batch_raw_score, batch_score, statistics)
			 VALUES(?,?,?,?,?,?,?,?,?,?)`,
			run.ID, d.Name, d.Kind, d.Author, d.LastModifiedBy,
			d.Suspicion.RawScore, d.Suspicion.NormalizedScore, batchRaw, batchScore, string(summary),
		)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		docID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("document last insert id: %w", err)
		}

		findings := d.Suspicion.Findings
		pass := "document"
		if d.BatchSuspicion != nil {
			findings = d.BatchSuspicion.Findings
			pass = "batch"
		}
		for _, f := range findings {
			if _, err := tx.Exec(
				`INSERT INTO factors(document_id, pass, rule, weight, message) VALUES(?,?,?,?,?)`,
				docID, pass, f.Rule, f.Weight, f.Message,
			); err != nil {
				return fmt.Errorf("insert factor: %w", err)
			}
		}
	}

	rsids := make([]string, 0, len(run.SharedRevisions))
	for rsid := range run.SharedRevisions {
		rsids = append(rsids, rsid)
	}
	slices.Sort(rsids)
	for _, rsid := range rsids {
		names, _ := json.Marshal(run.SharedRevisions[rsid])
		if _, err := tx.Exec(`INSERT INTO shared_revisions(run_id, rsid, documents) VALUES(?,?,?)`, run.ID, rsid, string(names)); err != nil {
			return fmt.Errorf("insert shared revision: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListRuns returns the newest runs first with their highest-scoring document.
func ListRuns(dbPath string, limit int) ([]RunSummary, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if limit <= 0 {
		limit = 20
	}
	rows, err := conn.Query(`
		SELECT r.id, r.created_at, r.document_count, r.max_score,
		       COALESCE((SELECT d.name FROM documents d WHERE d.run_id = r.id
		                 ORDER BY COALESCE(d.batch_score, d.score) DESC, d.id LIMIT 1), ''),
		       COALESCE((SELECT MAX(COALESCE(d.batch_score, d.score)) FROM documents d WHERE d.run_id = r.id), 0)
		FROM runs r
		ORDER BY r.created_at DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var created string
		if err := rows.Scan(&s.ID, &created, &s.Documents, &s.MaxScore, &s.TopDocument, &s.TopScore); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("parse run time: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
