package gmail_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"gtaskroll/internal/backend/gmail"
	"gtaskroll/internal/backend/retry"
)

var fastRetry = retry.Policy{MaxElapsed: 2 * time.Second, InitialInterval: time.Millisecond}

func TestCompose(t *testing.T) {
	raw := string(gmail.Compose("me@example.com", "Task rollover failed", "line one\nline two"))

	assert.Contains(t, raw, "To: me@example.com\r\n")
	assert.Contains(t, raw, "Subject: Task rollover failed\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nline one\r\nline two"))
}

func TestCompose_EncodesNonASCIISubject(t *testing.T) {
	raw := string(gmail.Compose("me@example.com", "Résumé", "x"))
	assert.Contains(t, raw, "Subject: =?utf-8?q?R=C3=A9sum=C3=A9?=\r\n")
}

func TestNotifier_Send(t *testing.T) {
	var got struct {
		Raw string `json:"raw"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /gmail/v1/users/me/messages/send", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	n, err := gmail.New(context.Background(), srv.Client(), fastRetry, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	require.NoError(t, n.Send(context.Background(), "me@example.com", "Weekly digest", "hello"))

	decoded, err := base64.URLEncoding.DecodeString(got.Raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "Subject: Weekly digest")
	assert.Contains(t, string(decoded), "\r\n\r\nhello")
}

func TestNotifier_SendRequiresRecipient(t *testing.T) {
	n, err := gmail.New(context.Background(), http.DefaultClient, fastRetry, option.WithEndpoint("http://127.0.0.1:1/"))
	require.NoError(t, err)
	assert.Error(t, n.Send(context.Background(), " ", "s", "b"))
}
