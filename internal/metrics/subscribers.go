package metrics

import (
	"context"

	"github.com/frahmantamala/shiftboard/internal/core/events"
)

// Subscribe keeps the audit and session counters in step with committed events.
func (m *Metrics) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAuditRecorded, func(_ context.Context, event events.Event) error {
		if e, ok := event.(*events.AuditRecordedEvent); ok {
			m.AuditEntries.WithLabelValues(e.Action).Inc()
		}
		return nil
	})
	bus.Subscribe(events.EventTypeSessionsRevoked, func(_ context.Context, event events.Event) error {
		if e, ok := event.(*events.SessionsRevokedEvent); ok {
			m.SessionsRevoked.WithLabelValues(e.Reason).Add(float64(e.Count))
		}
		return nil
	})
}
