package output_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gtaskroll/internal/output"
	"gtaskroll/internal/service"
)

func TestFormatTaskIndented(t *testing.T) {
	tests := []struct {
		name string
		task service.Task
		want string
	}{
		{"plain", service.Task{Title: "Buy milk"}, "       1  Buy milk\n"},
		{"untitled", service.Task{Title: "  "}, "       1  (untitled)\n"},
		{"newlines", service.Task{Title: "a\nb"}, "       1  a b\n"},
		{
			"due",
			service.Task{Title: "Pay rent", Due: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)},
			"       1  Pay rent  (due 2025-07-10)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatTaskIndented(&buf, 1, tt.task)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatListName(t *testing.T) {
	var buf bytes.Buffer
	output.FormatListName(&buf, service.TaskList{Title: "Inbox"}, "inbox")
	output.FormatListName(&buf, service.TaskList{Title: "Groceries"}, "")
	output.FormatListName(&buf, service.TaskList{Title: ""}, "")
	assert.Equal(t, "Inbox [inbox]\nGroceries\n(untitled)\n", buf.String())
}

func TestFormatListHeader(t *testing.T) {
	var buf bytes.Buffer
	output.FormatListHeader(&buf, "Stale lists")
	assert.Equal(t, "------------\nStale lists\n------------\n", buf.String())
}

func TestFormatRunStat(t *testing.T) {
	var buf bytes.Buffer
	output.FormatRunStat(&buf, service.RunStat{
		InboxAdds:    3,
		ListsDeleted: 1,
		ListsCreated: 1,
		CompletedTasks: []service.CompletedTask{
			{Name: "Pay rent", CompletedAt: time.Date(2025, 7, 9, 17, 45, 0, 0, time.UTC)},
		},
		Notes: "Paused due to timeout after 1 of 2 stale lists",
	})
	assert.Equal(t, ""+
		"Tasks rolled over:  3\n"+
		"Due tasks moved:    0\n"+
		"Lists retired:      1\n"+
		"Lists created:      1\n"+
		"Completed tasks:    1\n"+
		"    2025-07-09  Pay rent\n"+
		"Notes:              Paused due to timeout after 1 of 2 stale lists\n",
		buf.String())
}
