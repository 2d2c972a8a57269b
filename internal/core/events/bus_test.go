package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/frahmantamala/shiftboard/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("delivers to every subscriber of the type", func() {
		var audits, revokes atomic.Int32
		bus.Subscribe(events.EventTypeAuditRecorded, func(context.Context, events.Event) error {
			audits.Add(1)
			return nil
		})
		bus.Subscribe(events.EventTypeAuditRecorded, func(context.Context, events.Event) error {
			audits.Add(1)
			return errors.New("ignored")
		})
		bus.Subscribe(events.EventTypeSessionsRevoked, func(context.Context, events.Event) error {
			revokes.Add(1)
			return nil
		})

		Expect(bus.Publish(context.Background(), events.NewAuditRecordedEvent("l1", "shifts.create", "shift", "s1", "u1", 201))).To(Succeed())
		bus.Wait()

		Expect(audits.Load()).To(Equal(int32(2)))
		Expect(revokes.Load()).To(BeZero())
	})

	It("detaches handlers from the publisher's cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		var handlerErr atomic.Value
		bus.Subscribe(events.EventTypeSessionsRevoked, func(ctx context.Context, _ events.Event) error {
			handlerErr.Store(ctx.Err() == nil)
			return nil
		})

		cancel()
		Expect(bus.Publish(ctx, events.NewSessionsRevokedEvent("u1", "logout", 1))).To(Succeed())
		bus.Wait()
		Expect(handlerErr.Load()).To(BeTrue())
	})

	It("stops PublishSync at the first failing handler", func() {
		var calls int
		boom := errors.New("boom")
		bus.Subscribe(events.EventTypeSessionsRevoked, func(context.Context, events.Event) error {
			calls++
			return boom
		})
		bus.Subscribe(events.EventTypeSessionsRevoked, func(context.Context, events.Event) error {
			calls++
			return nil
		})

		err := bus.PublishSync(context.Background(), events.NewSessionsRevokedEvent("", "sweep", 3))
		Expect(err).To(MatchError(boom))
		Expect(calls).To(Equal(1))
	})

	It("exposes the payload", func() {
		e := events.NewSessionsRevokedEvent("u1", "password_change", 2)
		Expect(e.EventType()).To(Equal(events.EventTypeSessionsRevoked))
		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.Payload()).To(HaveKeyWithValue("count", int64(2)))
	})
})
