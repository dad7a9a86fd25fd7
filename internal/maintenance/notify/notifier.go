// Package notify sends overdue-schedule digests to an external channel.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	maintenance "maintenance-kpi/internal/maintenance/domain"
)

const defaultCooldown = 24 * time.Hour

// Clock provides time for cooldown tracking.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// OverdueNotifier renders overdue schedules into a digest and sends it.
// A schedule is repeated only after the cooldown, or once its due date
// changes.
type OverdueNotifier struct {
	channel        Channel
	template       *Template
	clock          Clock
	cooldown       time.Duration
	requestTimeout time.Duration

	mu   sync.Mutex
	sent map[string]time.Time
}

// Option configures the notifier.
type Option func(*OverdueNotifier)

// WithCooldown sets how long a schedule stays muted after a notification.
func WithCooldown(cooldown time.Duration) Option {
	return func(n *OverdueNotifier) {
		if cooldown > 0 {
			n.cooldown = cooldown
		}
	}
}

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(n *OverdueNotifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithRequestTimeout bounds each send.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(n *OverdueNotifier) {
		if timeout > 0 {
			n.requestTimeout = timeout
		}
	}
}

// NewOverdueNotifier constructs a notifier. A nil template uses DefaultTemplate.
func NewOverdueNotifier(channel Channel, tpl *Template, opts ...Option) (*OverdueNotifier, error) {
	if channel == nil {
		return nil, errors.New("overdue notifier: nil channel")
	}
	if tpl == nil {
		defaultTemplate, err := NewTemplate("")
		if err != nil {
			return nil, err
		}
		tpl = defaultTemplate
	}
	n := &OverdueNotifier{
		channel:  channel,
		template: tpl,
		clock:    systemClock{},
		cooldown: defaultCooldown,
		sent:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n, nil
}

// NotifyOverdue sends one digest covering the schedules not notified within
// the cooldown. It is a no-op when nothing is pending.
func (n *OverdueNotifier) NotifyOverdue(ctx context.Context, overdue []maintenance.ScheduleStatus) error {
	if n == nil {
		return nil
	}
	now := n.clock.Now().UTC()

	n.mu.Lock()
	pending := make([]maintenance.ScheduleStatus, 0, len(overdue))
	for _, status := range overdue {
		if last, ok := n.sent[sendKey(status)]; ok && now.Sub(last) < n.cooldown {
			continue
		}
		pending = append(pending, status)
	}
	n.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	data := TemplateData{Count: len(pending), GeneratedAt: now.Format(time.RFC3339)}
	for _, status := range pending {
		line := ScheduleLine{ScheduleID: status.ScheduleID, Name: status.Name, DaysOverdue: -status.DaysUntilDue}
		if status.NextDue != nil {
			line.NextDue = status.NextDue.UTC().Format("2006-01-02")
		}
		data.Schedules = append(data.Schedules, line)
	}
	content, err := n.template.Render(data)
	if err != nil {
		return err
	}

	if n.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.requestTimeout)
		defer cancel()
	}
	if err := n.channel.Send(ctx, content); err != nil {
		return err
	}

	n.mu.Lock()
	for _, status := range pending {
		n.sent[sendKey(status)] = now
	}
	n.mu.Unlock()
	return nil
}

func sendKey(status maintenance.ScheduleStatus) string {
	if status.NextDue == nil {
		return status.ScheduleID
	}
	return status.ScheduleID + "@" + status.NextDue.UTC().Format(time.RFC3339)
}
