// Package sheets stores run records as rows of a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"gtaskroll/internal/backend/retry"
	"gtaskroll/internal/service"
)

// APITimeout is the timeout for a single API attempt.
const APITimeout = 15 * time.Second

// RunLog appends one row per run to a sheet and reads them back for digests.
type RunLog struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
	retry         retry.Policy
}

// New creates a RunLog writing to sheet of spreadsheetID.
func New(ctx context.Context, httpClient *http.Client, spreadsheetID, sheet string, policy retry.Policy, opts ...option.ClientOption) (*RunLog, error) {
	if spreadsheetID == "" {
		return nil, errors.New("run_log.spreadsheet_id is not configured")
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &RunLog{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet, retry: policy}, nil
}

func (l *RunLog) columns() string {
	return l.sheet + "!A:G"
}

func (l *RunLog) call(ctx context.Context, fn func(ctx context.Context) error) error {
	return l.retry.Do(ctx, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, APITimeout)
		defer cancel()
		return fn(attemptCtx)
	})
}

// AppendRun implements service.RunLog.
func (l *RunLog) AppendRun(ctx context.Context, stat service.RunStat) error {
	row, err := EncodeRow(stat)
	if err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: [][]any{row}}
	err = l.call(ctx, func(ctx context.Context) error {
		_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, l.columns(), vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("append run row: %w", err)
	}
	return nil
}

// RecentRuns implements service.RunReader. Rows that do not decode (such as
// a header row) are skipped.
func (l *RunLog) RecentRuns(ctx context.Context, since time.Time) ([]service.RunStat, error) {
	var resp *sheets.ValueRange
	err := l.call(ctx, func(ctx context.Context) error {
		var err error
		resp, err = l.svc.Spreadsheets.Values.Get(l.spreadsheetID, l.columns()).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read run rows: %w", err)
	}

	var runs []service.RunStat
	for _, row := range resp.Values {
		stat, err := DecodeRow(row)
		if err != nil {
			continue
		}
		if stat.Timestamp.Before(since) {
			continue
		}
		runs = append(runs, stat)
	}
	return runs, nil
}

// EncodeRow renders a run record as a sheet row.
func EncodeRow(stat service.RunStat) ([]any, error) {
	completed := stat.CompletedTasks
	if completed == nil {
		completed = []service.CompletedTask{}
	}
	data, err := json.Marshal(completed)
	if err != nil {
		return nil, fmt.Errorf("encode completed tasks: %w", err)
	}
	return []any{
		stat.Timestamp.Format(time.RFC3339),
		stat.InboxAdds,
		stat.InboxMoves,
		stat.ListsDeleted,
		stat.ListsCreated,
		string(data),
		stat.Notes,
	}, nil
}

// DecodeRow parses a row written by EncodeRow. Missing trailing cells are empty.
func DecodeRow(row []any) (service.RunStat, error) {
	cell := func(i int) string {
		if i >= len(row) || row[i] == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(row[i]))
	}

	var stat service.RunStat
	ts, err := time.Parse(time.RFC3339, cell(0))
	if err != nil {
		return stat, fmt.Errorf("timestamp: %w", err)
	}
	stat.Timestamp = ts

	counters := []*int{&stat.InboxAdds, &stat.InboxMoves, &stat.ListsDeleted, &stat.ListsCreated}
	for i, dst := range counters {
		n, err := parseCount(cell(i + 1))
		if err != nil {
			return stat, fmt.Errorf("column %d: %w", i+2, err)
		}
		*dst = n
	}

	if raw := cell(5); raw != "" {
		if err := json.Unmarshal([]byte(raw), &stat.CompletedTasks); err != nil {
			return stat, fmt.Errorf("completed tasks: %w", err)
		}
	}
	stat.Notes = cell(6)
	return stat, nil
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
