// Package postgres stores run records in a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gtaskroll/internal/backend/retry"
	"gtaskroll/internal/service"
)

// Table holds one row per run.
const Table = "rollover_runs"

const schema = `
CREATE TABLE IF NOT EXISTS rollover_runs (
	id              BIGSERIAL PRIMARY KEY,
	ran_at          TIMESTAMPTZ NOT NULL,
	inbox_adds      INTEGER NOT NULL DEFAULT 0,
	inbox_moves     INTEGER NOT NULL DEFAULT 0,
	lists_deleted   INTEGER NOT NULL DEFAULT 0,
	lists_created   INTEGER NOT NULL DEFAULT 0,
	completed_tasks JSONB NOT NULL DEFAULT '[]',
	notes           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS rollover_runs_ran_at_idx ON rollover_runs (ran_at);
`

// RunLog implements service.RunStore over database/sql with lib/pq.
type RunLog struct {
	db    *sql.DB
	retry retry.Policy
}

// Open connects to dsn and creates the run table if missing.
func Open(ctx context.Context, dsn string, policy retry.Policy) (*RunLog, error) {
	if dsn == "" {
		return nil, errors.New("run_log.postgres_dsn is not configured")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	l := &RunLog{db: db, retry: policy}
	if err := l.retry.Do(ctx, func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := l.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *RunLog) migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, schema)
	if isConcurrentCreate(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", Table, err)
	}
	return nil
}

// isConcurrentCreate reports the errors two processes racing on
// CREATE ... IF NOT EXISTS can still produce.
func isConcurrentCreate(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" || pqErr.Code == "42P07"
}

// Close closes the database handle.
func (l *RunLog) Close() error {
	return l.db.Close()
}

// AppendRun implements service.RunLog.
func (l *RunLog) AppendRun(ctx context.Context, stat service.RunStat) error {
	completed, err := encodeCompleted(stat.CompletedTasks)
	if err != nil {
		return err
	}
	err = l.retry.Do(ctx, func() error {
		_, err := l.db.ExecContext(ctx, `
			INSERT INTO rollover_runs
				(ran_at, inbox_adds, inbox_moves, lists_deleted, lists_created, completed_tasks, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			stat.Timestamp, stat.InboxAdds, stat.InboxMoves, stat.ListsDeleted, stat.ListsCreated,
			completed, stat.Notes)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns implements service.RunReader, oldest first.
func (l *RunLog) RecentRuns(ctx context.Context, since time.Time) ([]service.RunStat, error) {
	var runs []service.RunStat
	err := l.retry.Do(ctx, func() error {
		runs = nil
		rows, err := l.db.QueryContext(ctx, `
			SELECT ran_at, inbox_adds, inbox_moves, lists_deleted, lists_created, completed_tasks, notes
			FROM rollover_runs
			WHERE ran_at >= $1
			ORDER BY ran_at`, since)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				stat      service.RunStat
				completed []byte
			)
			if err := rows.Scan(&stat.Timestamp, &stat.InboxAdds, &stat.InboxMoves,
				&stat.ListsDeleted, &stat.ListsCreated, &completed, &stat.Notes); err != nil {
				return err
			}
			if stat.CompletedTasks, err = decodeCompleted(completed); err != nil {
				return err
			}
			runs = append(runs, stat)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return runs, nil
}

func encodeCompleted(tasks []service.CompletedTask) (string, error) {
	if tasks == nil {
		tasks = []service.CompletedTask{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode completed tasks: %w", err)
	}
	return string(data), nil
}

func decodeCompleted(data []byte) ([]service.CompletedTask, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var tasks []service.CompletedTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode completed tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks, nil
}
