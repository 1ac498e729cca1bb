package database

import "time"

// Run records one completed enrichment run.
type Run struct {
	ID              int64
	StartedAt       string
	FinishedAt      string
	ChunksCommitted int
	CasesProcessed  int
	FetchFailures   int
	StoppedEarly    bool
}

// Stats contains aggregate run statistics.
type Stats struct {
	TotalRuns      int
	CasesProcessed int
	FetchFailures  int
	LastFinishedAt string
}

// InsertRun stores a completed run.
func (db *DB) InsertRun(r Run) (int64, error) {
	stopped := 0
	if r.StoppedEarly {
		stopped = 1
	}
	result, err := db.conn.Exec(
		`INSERT INTO runs (started_at, finished_at, chunks_committed, cases_processed, fetch_failures, stopped_early)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.StartedAt, r.FinishedAt, r.ChunksCommitted, r.CasesProcessed, r.FetchFailures, stopped,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetRecentRuns returns the most recent runs, newest first.
func (db *DB) GetRecentRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		`SELECT id, started_at, finished_at, chunks_committed, cases_processed, fetch_failures, stopped_early
		FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var stopped int
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt,
			&r.ChunksCommitted, &r.CasesProcessed, &r.FetchFailures, &stopped); err != nil {
			return nil, err
		}
		r.StoppedEarly = stopped != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetStats aggregates run history into totals.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}
	err := db.conn.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(cases_processed), 0), COALESCE(SUM(fetch_failures), 0),
		COALESCE(MAX(finished_at), '') FROM runs`,
	).Scan(&stats.TotalRuns, &stats.CasesProcessed, &stats.FetchFailures, &stats.LastFinishedAt)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Timestamp formats a time the way run rows store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
