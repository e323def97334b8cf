package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"prunarr/internal/config"
)

const userAgent = "prunarr/0.1"

// RunSummary is the slice of a finished run that notifications report on.
type RunSummary struct {
	RunID        string
	Requested    int
	Deleted      int
	NotFound     int
	SpaceSavedGB int64
	Duration     time.Duration
}

// Service defines the notification surface exposed to the run orchestrator.
type Service interface {
	NotifyRunCompleted(ctx context.Context, summary RunSummary) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		runCompleted: cfg.Notifications.RunCompleted,
		errors:       cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	runCompleted bool
	errors       bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, summary RunSummary) error {
	if !n.runCompleted {
		return nil
	}
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var message strings.Builder
	fmt.Fprintf(&message, "Removed %s of %s, freed %d GB",
		plural(summary.Deleted, "movie"), plural(summary.Requested, "request"), summary.SpaceSavedGB)
	if summary.NotFound > 0 {
		fmt.Fprintf(&message, "\n%s not found", plural(summary.NotFound, "title"))
	}
	fmt.Fprintf(&message, "\nFinished in %s", duration)

	title := "Prunarr - Run Complete"
	tags := []string{"prunarr", "run", "completed"}
	if summary.NotFound > 0 {
		title = "Prunarr - Run Complete (with misses)"
		tags = append(tags, "warning")
	}
	return n.send(ctx, payload{title: title, message: message.String(), tags: tags})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Prunarr - Error",
		message:  builder.String(),
		tags:     []string{"prunarr", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Prunarr - Test",
		message:  "Notification system test",
		tags:     []string{"prunarr", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func plural(n int, noun string) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, noun, "")
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunSummary) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error     { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
