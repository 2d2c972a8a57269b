package shift_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/audit"
	auditPostgres "github.com/frahmantamala/shiftboard/internal/audit/postgres"
	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/internal/shift"
	shiftPostgres "github.com/frahmantamala/shiftboard/internal/shift/postgres"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/store/storetest"
	userPostgres "github.com/frahmantamala/shiftboard/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestShift(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Shift Suite")
}

var _ = Describe("ShiftDTO", func() {
	It("requires every field", func() {
		Expect(shift.ShiftDTO{PersonID: "p"}.ValidateRequired()).To(MatchError(shift.ErrMissingFields))
		Expect(shift.ShiftDTO{PersonID: "p", StartAt: "a", EndAt: "b"}.ValidateRequired()).To(BeNil())
	})

	It("parses offsets into UTC", func() {
		iv, err := shift.ShiftDTO{StartAt: "2030-01-01T09:00:00-05:00", EndAt: "2030-01-01T17:00:00-05:00"}.Interval()
		Expect(err).To(BeNil())
		Expect(iv.Start).To(Equal(time.Date(2030, 1, 1, 14, 0, 0, 0, time.UTC)))
		Expect(iv.End).To(Equal(time.Date(2030, 1, 1, 22, 0, 0, 0, time.UTC)))
	})

	DescribeTable("rejects bad intervals",
		func(start, end, message string) {
			_, err := shift.ShiftDTO{StartAt: start, EndAt: end}.Interval()
			Expect(err).NotTo(BeNil())
			Expect(err.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(err.GetDetailedMessage()).To(Equal(message))
		},
		Entry("missing zone", "2030-01-01T09:00:00", "2030-01-01T10:00:00Z", "timestamp must include timezone"),
		Entry("not a time", "tomorrow Z", "2030-01-01T10:00:00Z", "invalid timestamp"),
		Entry("empty range", "2030-01-01T09:00:00Z", "2030-01-01T09:00:00Z", "end_at must be after start_at"),
		Entry("inverted range", "2030-01-01T10:00:00Z", "2030-01-01T09:00:00+00:00", "end_at must be after start_at"),
		Entry("range inside one millisecond", "2030-01-01T09:00:00.0001Z", "2030-01-01T09:00:00.0009Z", "end_at must be after start_at"),
	)
})

var _ = Describe("ParseListFilter", func() {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	It("defaults to upcoming shifts", func() {
		f, err := shift.ParseListFilter("", "", now)
		Expect(err).To(BeNil())
		Expect(*f.From).To(Equal(timestamp.Millis(now)))
		Expect(f.To).To(BeNil())
	})

	It("leaves an omitted bound open", func() {
		f, err := shift.ParseListFilter("", "2030-01-02T00:00:00Z", now)
		Expect(err).To(BeNil())
		Expect(f.From).To(BeNil())
		Expect(*f.To).To(Equal(timestamp.Millis(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC))))
	})

	It("accepts equal bounds", func() {
		_, err := shift.ParseListFilter("2030-01-02T00:00:00Z", "2030-01-02T00:00:00Z", now)
		Expect(err).To(BeNil())
	})

	It("rejects an inverted range", func() {
		_, err := shift.ParseListFilter("2030-01-02T00:00:00Z", "2030-01-01T00:00:00Z", now)
		Expect(err).To(MatchError(internal.ErrInvalidRange))
	})

	It("rejects unzoned bounds", func() {
		_, err := shift.ParseListFilter("2030-01-02T00:00:00", "", now)
		Expect(err).NotTo(BeNil())
		Expect(err.Code).To(Equal(internal.ErrCodeInvalidTimestamp))
	})
})

var _ = Describe("Shift Service", func() {
	var (
		db      *gorm.DB
		users   *userPostgres.UserRepository
		service *shift.Service
		actor   *session.Identity
		now     time.Time
		ctx     context.Context
	)

	addPerson := func(id, name string) {
		stamp := timestamp.Format(now)
		u := &userDatamodel.User{ID: id, Username: id, PersonNameB64: userDatamodel.EncodeName(name), CreatedAt: stamp, UpdatedAt: stamp}
		cred := &userDatamodel.Credential{UserID: id, PasswordSalt: "s", PasswordHash: "h", CreatedAt: stamp, UpdatedAt: stamp}
		Expect(users.CreateAccount(ctx, u, cred)).To(Succeed())
	}

	at := func(d time.Duration) string {
		return timestamp.Format(now.Add(d))
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.NewDB()
		Expect(err).NotTo(HaveOccurred())
		reader, err := store.Reader(db)
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		now = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
		ctx = context.Background()
		users = userPostgres.NewUserRepository(db)
		recorder := audit.NewRecorder(auditPostgres.NewAuditRepository(db, reader), nil, logger)
		service = shift.NewService(shiftPostgres.NewShiftRepository(db, reader), users, recorder, store.NewTxManager(db), logger).
			WithClock(func() time.Time { return now })
		actor = &session.Identity{UserID: "admin", Username: "admin"}

		addPerson("p1", "Alice")
		addPerson("p2", "Bob")
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	It("creates a shift carrying the person's name", func() {
		s, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p1", StartAt: at(time.Hour), EndAt: at(2 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.PersonNameB64).To(Equal(userDatamodel.EncodeName("Alice")))
		Expect(s.StartAt).To(Equal("2030-01-01T13:00:00.000Z"))
		Expect(s.CreatedAt).To(Equal(s.UpdatedAt))
	})

	It("rejects an unknown person before parsing times", func() {
		_, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "ghost", StartAt: "bad", EndAt: "bad"})
		Expect(err).To(MatchError(internal.ErrPersonNotFound))
	})

	It("orders listings by start then id and joins names", func() {
		late, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p2", StartAt: at(5 * time.Hour), EndAt: at(6 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())
		a, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p1", StartAt: at(time.Hour), EndAt: at(2 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())
		b, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p2", StartAt: at(time.Hour), EndAt: at(3 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())

		list, err := service.List(ctx, "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(3))

		first, second := a, b
		if b.ID < a.ID {
			first, second = b, a
		}
		Expect(list[0].ID).To(Equal(first.ID))
		Expect(list[1].ID).To(Equal(second.ID))
		Expect(list[2].ID).To(Equal(late.ID))
		Expect(list[2].PersonNameB64).To(Equal(userDatamodel.EncodeName("Bob")))
	})

	It("includes shifts that start exactly at the default lower bound", func() {
		_, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p1", StartAt: at(0), EndAt: at(time.Hour)})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p1", StartAt: at(-time.Millisecond), EndAt: at(time.Hour)})
		Expect(err).NotTo(HaveOccurred())

		list, err := service.List(ctx, "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		Expect(list[0].StartAt).To(Equal(at(0)))
	})

	It("filters by an explicit window", func() {
		for _, h := range []int{-2, 1, 4} {
			_, err := service.Create(ctx, actor, shift.ShiftDTO{
				PersonID: "p1",
				StartAt:  at(time.Duration(h) * time.Hour),
				EndAt:    at(time.Duration(h+1) * time.Hour),
			})
			Expect(err).NotTo(HaveOccurred())
		}

		list, err := service.List(ctx, at(-3*time.Hour), at(time.Hour))
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))

		list, err = service.List(ctx, at(2*time.Hour), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
	})

	It("reassigns and reschedules on update", func() {
		s, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p1", StartAt: at(time.Hour), EndAt: at(2 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(time.Minute)
		updated, err := service.Update(ctx, actor, s.ID, shift.ShiftDTO{PersonID: "p2", StartAt: at(3 * time.Hour), EndAt: at(4 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.PersonID).To(Equal("p2"))
		Expect(updated.PersonNameB64).To(Equal(userDatamodel.EncodeName("Bob")))
		Expect(updated.CreatedAt).To(Equal(s.CreatedAt))
		Expect(updated.UpdatedAt).NotTo(Equal(s.UpdatedAt))
	})

	It("leaves the shift untouched when an update is invalid", func() {
		s, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p1", StartAt: at(time.Hour), EndAt: at(2 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Update(ctx, actor, s.ID, shift.ShiftDTO{PersonID: "p1", StartAt: at(3 * time.Hour), EndAt: at(3 * time.Hour)})
		Expect(err).To(MatchError(internal.ErrInvalidRange))

		list, err := service.List(ctx, "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(list[0].StartAt).To(Equal(s.StartAt))
	})

	It("returns not found for unknown shifts", func() {
		_, err := service.Update(ctx, actor, "nope", shift.ShiftDTO{PersonID: "p1", StartAt: at(time.Hour), EndAt: at(2 * time.Hour)})
		Expect(err).To(MatchError(internal.ErrShiftNotFound))
		Expect(service.Delete(ctx, actor, "nope")).To(MatchError(internal.ErrShiftNotFound))
	})

	It("deletes shifts", func() {
		s, err := service.Create(ctx, actor, shift.ShiftDTO{PersonID: "p1", StartAt: at(time.Hour), EndAt: at(2 * time.Hour)})
		Expect(err).NotTo(HaveOccurred())
		Expect(service.Delete(ctx, actor, s.ID)).To(Succeed())

		list, err := service.List(ctx, "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(BeEmpty())
	})
})
