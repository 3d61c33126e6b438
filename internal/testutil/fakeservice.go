// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"gtaskroll/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = service.ErrNotFound

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.TaskList
	tasks  map[string][]service.Task // listID -> tasks
	nextID int

	// Calls records mutating calls in order, e.g. "insert:inbox", "delete-task:l1/t1".
	Calls []string

	// Error injection for testing
	ListListsErr   error
	CreateListErr  error
	DeleteListErr  map[string]error // listID -> error
	ListTasksErr   map[string]error // listID -> error
	InsertTaskErr  error
	PatchNotesErr  error
	DeleteTaskErr  error
	DeleteTaskHook func(listID, taskID string) // called before a delete succeeds
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		tasks:         make(map[string][]service.Task),
		DeleteListErr: make(map[string]error),
		ListTasksErr:  make(map[string]error),
	}
}

// AddList adds a list to the fake service.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title})
	if f.tasks[id] == nil {
		f.tasks[id] = nil
	}
}

// AddTask adds a task to a list. An empty ID and status are filled in.
func (f *FakeService) AddTask(listID string, task service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == "" {
		task.ID = f.newID()
	}
	if task.Status == "" {
		task.Status = service.StatusNeedsAction
	}
	f.tasks[listID] = append(f.tasks[listID], task)
	return task
}

// Tasks returns a copy of the tasks currently in a list.
func (f *FakeService) Tasks(listID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks[listID]))
	copy(result, f.tasks[listID])
	return result
}

// Lists returns a copy of the current lists.
func (f *FakeService) Lists() []service.TaskList {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.TaskList, len(f.lists))
	copy(result, f.lists)
	return result
}

// FindList returns the first list with the given title.
func (f *FakeService) FindList(title string) (service.TaskList, bool) {
	for _, l := range f.Lists() {
		if l.Title == title {
			return l, true
		}
	}
	return service.TaskList{}, false
}

func (f *FakeService) newID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	return f.Lists(), nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, title string) (service.TaskList, error) {
	if f.CreateListErr != nil {
		return service.TaskList{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	list := service.TaskList{ID: f.newID(), Title: title}
	f.lists = append(f.lists, list)
	f.tasks[list.ID] = nil
	f.Calls = append(f.Calls, "create-list:"+title)
	return list, nil
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if err := f.DeleteListErr[listID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			delete(f.tasks, listID)
			f.Calls = append(f.Calls, "delete-list:"+listID)
			return nil
		}
	}
	return ErrNotFound
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID string, opts service.ListOptions) ([]service.Task, error) {
	if err := f.ListTasksErr[listID]; err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return nil, ErrNotFound
	}

	var result []service.Task
	for _, t := range tasks {
		if !opts.IncludeCompleted && t.Status != service.StatusNeedsAction {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// InsertTask implements service.Service.
func (f *FakeService) InsertTask(ctx context.Context, listID string, task service.Task) (service.Task, error) {
	if f.InsertTaskErr != nil {
		return service.Task{}, f.InsertTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[listID]; !ok {
		return service.Task{}, ErrNotFound
	}

	stored := service.Task{
		ID:     f.newID(),
		Title:  task.Title,
		Notes:  task.Notes,
		Due:    task.Due,
		Status: service.StatusNeedsAction,
	}
	f.tasks[listID] = append(f.tasks[listID], stored)
	f.Calls = append(f.Calls, "insert:"+listID)
	return stored, nil
}

// PatchTaskNotes implements service.Service.
func (f *FakeService) PatchTaskNotes(ctx context.Context, listID, taskID, notes string) (service.Task, error) {
	if f.PatchNotesErr != nil {
		return service.Task{}, f.PatchNotesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks[listID] {
		if t.ID == taskID {
			f.tasks[listID][i].Notes = notes
			f.Calls = append(f.Calls, "patch:"+listID+"/"+taskID)
			return f.tasks[listID][i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, listID, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	if f.DeleteTaskHook != nil {
		f.DeleteTaskHook(listID, taskID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return ErrNotFound
	}

	for i, t := range tasks {
		if t.ID == taskID {
			f.tasks[listID] = append(tasks[:i], tasks[i+1:]...)
			f.Calls = append(f.Calls, "delete-task:"+listID+"/"+taskID)
			return nil
		}
	}
	return ErrNotFound
}
