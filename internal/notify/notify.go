// Package notify is the toast-style notification side channel: failures and
// confirmations from the order and AI layers land here and are exposed to
// clients through the notifications endpoint.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

const defaultCapacity = 50

// Notifier receives fire-and-forget notifications.
type Notifier interface {
	Notify(message string, severity Severity)
}

type Notification struct {
	ID        string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Feed keeps the most recent notifications in memory and mirrors each one
// to the logger.
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	next   int
	full   bool
	logger *zap.Logger
	now    func() time.Time
}

func NewFeed(capacity int, logger *zap.Logger) *Feed {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		items:  make([]Notification, capacity),
		logger: logger,
		now:    time.Now,
	}
}

func (f *Feed) Notify(message string, severity Severity) {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: f.now().UTC(),
	}

	f.mu.Lock()
	f.items[f.next] = n
	f.next = (f.next + 1) % len(f.items)
	if f.next == 0 {
		f.full = true
	}
	f.mu.Unlock()

	fields := []zap.Field{zap.String("notification_id", n.ID), zap.String("severity", string(severity))}
	switch severity {
	case SeverityError:
		f.logger.Error(message, fields...)
	case SeverityWarning:
		f.logger.Warn(message, fields...)
	default:
		f.logger.Info(message, fields...)
	}
}

// Recent returns up to n notifications, newest first. n <= 0 returns all.
func (f *Feed) Recent(n int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	size := f.next
	if f.full {
		size = len(f.items)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Notification, 0, n)
	idx := f.next
	for i := 0; i < n; i++ {
		idx = (idx - 1 + len(f.items)) % len(f.items)
		out = append(out, f.items[idx])
	}
	return out
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) Notify(string, Severity) {}
