// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"gtaskroll/internal/backend/retry"
	"gtaskroll/internal/service"
)

const (
	// PageSize is the number of items requested per page.
	PageSize = 100

	// APITimeout is the timeout for a single API attempt.
	APITimeout = 15 * time.Second
)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc   *tasks.Service
	retry retry.Policy
}

// New creates a Google Tasks client over an authorised HTTP client.
func New(ctx context.Context, httpClient *http.Client, policy retry.Policy, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, retry: policy}, nil
}

// call runs one API attempt under its own timeout, with retries for transient failures.
func (c *Client) call(ctx context.Context, fn func(ctx context.Context) error) error {
	err := c.retry.Do(ctx, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, APITimeout)
		defer cancel()
		return fn(attemptCtx)
	})
	return wrapError(err)
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	var result []service.TaskList
	err := c.call(ctx, func(ctx context.Context) error {
		result = nil
		return c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
			for _, list := range resp.Items {
				result = append(result, service.TaskList{ID: list.Id, Title: list.Title})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateList creates a new task list.
func (c *Client) CreateList(ctx context.Context, title string) (service.TaskList, error) {
	var created *tasks.TaskList
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.TaskList{}, err
	}
	return service.TaskList{ID: created.Id, Title: created.Title}, nil
}

// DeleteList deletes a task list by ID.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	return c.call(ctx, func(ctx context.Context) error {
		return c.svc.Tasklists.Delete(listID).Context(ctx).Do()
	})
}

// ListTasks returns every task of a list with all pages merged.
// With IncludeCompleted, hidden (cleared) completed tasks are included too;
// callers filter by status themselves because the server-side completed
// filter is not reliable.
func (c *Client) ListTasks(ctx context.Context, listID string, opts service.ListOptions) ([]service.Task, error) {
	var result []service.Task
	err := c.call(ctx, func(ctx context.Context) error {
		result = nil
		return c.svc.Tasks.List(listID).
			MaxResults(PageSize).
			ShowCompleted(opts.IncludeCompleted).
			ShowHidden(opts.IncludeCompleted).
			ShowDeleted(false).
			Pages(ctx, func(resp *tasks.Tasks) error {
				for _, t := range resp.Items {
					result = append(result, fromAPI(t))
				}
				return nil
			})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// InsertTask creates a task from title, notes and due in the specified list.
func (c *Client) InsertTask(ctx context.Context, listID string, task service.Task) (service.Task, error) {
	body := &tasks.Task{Title: task.Title, Notes: task.Notes}
	if task.HasDue() {
		body.Due = task.Due.Format(time.RFC3339)
	}
	var created *tasks.Task
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.svc.Tasks.Insert(listID, body).Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.Task{}, err
	}
	return fromAPI(created), nil
}

// PatchTaskNotes replaces the notes of a task.
func (c *Client) PatchTaskNotes(ctx context.Context, listID, taskID, notes string) (service.Task, error) {
	body := &tasks.Task{Notes: notes, ForceSendFields: []string{"Notes"}}
	var patched *tasks.Task
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		patched, err = c.svc.Tasks.Patch(listID, taskID, body).Context(ctx).Do()
		return err
	})
	if err != nil {
		return service.Task{}, err
	}
	return fromAPI(patched), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	return c.call(ctx, func(ctx context.Context) error {
		return c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do()
	})
}

func fromAPI(t *tasks.Task) service.Task {
	out := service.Task{
		ID:     t.Id,
		Title:  t.Title,
		Notes:  t.Notes,
		Status: t.Status,
		Due:    parseTime(t.Due),
	}
	if t.Completed != nil {
		out.Completed = parseTime(*t.Completed)
	}
	for _, l := range t.Links {
		if l == nil {
			continue
		}
		out.Links = append(out.Links, service.Link{Type: l.Type, URL: l.Link, Description: l.Description})
	}
	return out
}

// parseTime parses an RFC 3339 timestamp, keeping its own offset. Unparseable values yield zero.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: gtaskroll login): %w", err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", service.ErrNotFound, err)
		}
	}

	return err
}
