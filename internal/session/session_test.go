package session_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/core/events"
	"github.com/frahmantamala/shiftboard/internal/metrics"
	"github.com/frahmantamala/shiftboard/internal/session"
	sessionPostgres "github.com/frahmantamala/shiftboard/internal/session/postgres"
	"github.com/frahmantamala/shiftboard/internal/store/storetest"
	userPostgres "github.com/frahmantamala/shiftboard/internal/user/postgres"
	"github.com/go-co-op/gocron/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.SessionsRevokedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := event.(*events.SessionsRevokedEvent); ok {
		p.events = append(p.events, e)
	}
	return nil
}

var _ = Describe("Manager", func() {
	var (
		db        *gorm.DB
		users     *userPostgres.UserRepository
		repo      session.Repository
		manager   *session.Manager
		publisher *recordingPublisher
		m         *metrics.Metrics
		now       time.Time
		ctx       context.Context
		logger    *slog.Logger
	)

	addUser := func(id, username string, isAdmin bool) {
		stamp := timestamp.Format(now)
		u := &userDatamodel.User{
			ID:            id,
			Username:      username,
			PersonNameB64: userDatamodel.EncodeName(username),
			IsAdmin:       isAdmin,
			CreatedAt:     stamp,
			UpdatedAt:     stamp,
		}
		cred := &userDatamodel.Credential{
			UserID:       id,
			PasswordSalt: "salt",
			PasswordHash: "hash",
			CreatedAt:    stamp,
			UpdatedAt:    stamp,
		}
		Expect(users.CreateAccount(ctx, u, cred)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.NewDB()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		now = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		users = userPostgres.NewUserRepository(db)
		repo = sessionPostgres.NewSessionRepository(db)
		publisher = &recordingPublisher{}
		m = metrics.Nop()

		manager = session.NewManager(repo, users, internal.SecurityConfig{SessionTTL: time.Hour}, logger).
			WithClock(func() time.Time { return now }).
			WithPublisher(publisher).
			WithMetrics(m)

		addUser("u1", "alice", true)
		addUser("u2", "bob", false)
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	It("issues opaque tokens that resolve to the owner's current identity", func() {
		s, err := manager.Create(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Token).To(HaveLen(32))
		Expect(s.ExpiresAt).To(Equal("2030-01-01T10:00:00.000Z"))
		Expect(testutil.ToFloat64(m.SessionsIssued)).To(Equal(1.0))

		identity, err := manager.Validate(ctx, s.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.UserID).To(Equal("u1"))
		Expect(identity.Username).To(Equal("alice"))
		Expect(identity.IsAdmin).To(BeTrue())
		Expect(identity.Token).To(Equal(s.Token))
	})

	It("issues distinct tokens", func() {
		a, err := manager.Create(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		b, err := manager.Create(ctx, "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Token).NotTo(Equal(b.Token))
	})

	It("rejects empty and unknown tokens", func() {
		_, err := manager.Validate(ctx, "")
		Expect(err).To(MatchError(internal.ErrUnauthorized))
		_, err = manager.Validate(ctx, "missing")
		Expect(err).To(MatchError(internal.ErrUnauthorized))
	})

	It("treats a session as expired from its expiry instant and deletes it", func() {
		s, err := manager.Create(ctx, "u2")
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(time.Hour - time.Millisecond)
		_, err = manager.Validate(ctx, s.Token)
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(time.Millisecond)
		_, err = manager.Validate(ctx, s.Token)
		Expect(err).To(MatchError(internal.ErrUnauthorized))

		row, err := repo.GetByToken(ctx, s.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(row).To(BeNil())

		Expect(publisher.events).To(HaveLen(1))
		Expect(publisher.events[0].Reason).To(Equal(session.ReasonExpired))
	})

	It("reflects role changes without reissuing the token", func() {
		s, err := manager.Create(ctx, "u2")
		Expect(err).NotTo(HaveOccurred())

		u, err := users.GetByID(ctx, "u2")
		Expect(err).NotTo(HaveOccurred())
		u.IsAdmin = true
		Expect(users.Update(ctx, u, false)).To(Succeed())

		identity, err := manager.Validate(ctx, s.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.IsAdmin).To(BeTrue())
	})

	It("invalidates every session of one user only", func() {
		a, _ := manager.Create(ctx, "u1")
		b, _ := manager.Create(ctx, "u1")
		c, _ := manager.Create(ctx, "u2")

		Expect(manager.InvalidateAll(ctx, "u1")).To(Succeed())

		for _, token := range []string{a.Token, b.Token} {
			_, err := manager.Validate(ctx, token)
			Expect(err).To(MatchError(internal.ErrUnauthorized))
		}
		_, err := manager.Validate(ctx, c.Token)
		Expect(err).NotTo(HaveOccurred())

		Expect(publisher.events).To(HaveLen(1))
		Expect(publisher.events[0].UserID).To(Equal("u1"))
		Expect(publisher.events[0].Count).To(Equal(int64(2)))
	})

	It("invalidates a single session on logout", func() {
		a, _ := manager.Create(ctx, "u1")
		b, _ := manager.Create(ctx, "u1")

		Expect(manager.InvalidateOne(ctx, a.Token)).To(Succeed())

		_, err := manager.Validate(ctx, a.Token)
		Expect(err).To(MatchError(internal.ErrUnauthorized))
		_, err = manager.Validate(ctx, b.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(publisher.events[0].Reason).To(Equal(session.ReasonLogout))
	})

	It("sweeps only expired sessions", func() {
		old, _ := manager.Create(ctx, "u1")
		now = now.Add(30 * time.Minute)
		fresh, _ := manager.Create(ctx, "u2")
		now = now.Add(30 * time.Minute)

		n, err := manager.SweepExpired(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))
		Expect(testutil.ToFloat64(m.SessionsSwept)).To(Equal(1.0))

		row, err := repo.GetByToken(ctx, old.Token)
		Expect(err).NotTo(HaveOccurred())
		Expect(row).To(BeNil())

		_, err = manager.Validate(ctx, fresh.Token)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("ScheduleSweep", func() {
		It("registers a named job for a positive interval", func() {
			s, err := gocron.NewScheduler()
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = s.Shutdown() }()

			job, err := session.ScheduleSweep(s, manager, time.Hour, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(job).NotTo(BeNil())
			Expect(job.Name()).To(Equal("session-sweep"))
			Expect(s.Jobs()).To(HaveLen(1))
		})

		It("schedules nothing when disabled", func() {
			s, err := gocron.NewScheduler()
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = s.Shutdown() }()

			job, err := session.ScheduleSweep(s, manager, 0, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(job).To(BeNil())
			Expect(s.Jobs()).To(BeEmpty())
		})
	})
})
