// Package gmail sends plain-text notifications through the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"gtaskroll/internal/backend/retry"
)

// APITimeout is the timeout for a single API attempt.
const APITimeout = 15 * time.Second

// Notifier implements service.Notifier as the authorised user.
type Notifier struct {
	svc   *gmail.Service
	retry retry.Policy
}

// New creates a Notifier over an authorised HTTP client.
func New(ctx context.Context, httpClient *http.Client, policy retry.Policy, opts ...option.ClientOption) (*Notifier, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Notifier{svc: svc, retry: policy}, nil
}

// Send mails body to recipient.
func (n *Notifier) Send(ctx context.Context, recipient, subject, body string) error {
	if strings.TrimSpace(recipient) == "" {
		return errors.New("no recipient")
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(Compose(recipient, subject, body))}
	err := n.retry.Do(ctx, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, APITimeout)
		defer cancel()
		_, err := n.svc.Users.Messages.Send("me", msg).Context(attemptCtx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", recipient, err)
	}
	return nil
}

// Compose renders an RFC 822 plain-text message.
func Compose(recipient, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("To: " + recipient + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}
