package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/store"
	"github.com/frahmantamala/shiftboard/internal/store/storetest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

func newUser(id, username string) *userDatamodel.User {
	now := timestamp.Now()
	return &userDatamodel.User{
		ID:            id,
		Username:      username,
		PersonNameB64: userDatamodel.EncodeName(username),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

var _ = Describe("Store", func() {
	var (
		db  *gorm.DB
		txm *store.TxManager
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = storetest.NewDB()
		Expect(err).NotTo(HaveOccurred())
		txm = store.NewTxManager(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	Describe("Migrate", func() {
		It("applies every embedded migration", func() {
			version, err := store.Version(ctx, db)
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(Equal(int64(2)))

			for _, table := range []string{"users", "people", "user_credentials", "sessions", "shifts", "audit_logs"} {
				Expect(db.Migrator().HasTable(table)).To(BeTrue(), table)
			}
		})

		It("is idempotent", func() {
			Expect(store.Migrate(ctx, db)).To(Succeed())
		})

		It("rolls back the latest migration", func() {
			Expect(store.Rollback(ctx, db)).To(Succeed())
			Expect(db.Migrator().HasTable("audit_logs")).To(BeFalse())
			Expect(db.Migrator().HasTable("users")).To(BeTrue())
		})
	})

	Describe("WithinTransaction", func() {
		It("commits every write when fn succeeds", func() {
			err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
				u := newUser("u1", "alice")
				if err := store.Conn(ctx, db).Create(u).Error; err != nil {
					return err
				}
				return store.Conn(ctx, db).Create(userDatamodel.PersonFor(u)).Error
			})
			Expect(err).NotTo(HaveOccurred())

			var users, people int64
			Expect(db.Model(&userDatamodel.User{}).Count(&users).Error).To(Succeed())
			Expect(db.Model(&userDatamodel.Person{}).Count(&people).Error).To(Succeed())
			Expect(users).To(Equal(int64(1)))
			Expect(people).To(Equal(int64(1)))
		})

		It("rolls back every write when fn fails", func() {
			boom := errors.New("boom")
			err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
				if err := store.Conn(ctx, db).Create(newUser("u1", "alice")).Error; err != nil {
					return err
				}
				return boom
			})
			Expect(err).To(MatchError(boom))

			var users int64
			Expect(db.Model(&userDatamodel.User{}).Count(&users).Error).To(Succeed())
			Expect(users).To(BeZero())
		})

		It("translates unique violations", func() {
			Expect(db.Create(newUser("u1", "alice")).Error).To(Succeed())
			err := db.Create(newUser("u2", "alice")).Error
			Expect(errors.Is(err, gorm.ErrDuplicatedKey)).To(BeTrue())
		})

		It("joins an outer transaction", func() {
			boom := errors.New("boom")
			err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
				inner := txm.WithinTransaction(ctx, func(ctx context.Context) error {
					Expect(store.InTransaction(ctx)).To(BeTrue())
					return store.Conn(ctx, db).Create(newUser("u1", "alice")).Error
				})
				Expect(inner).NotTo(HaveOccurred())
				return boom
			})
			Expect(err).To(MatchError(boom))

			var users int64
			Expect(db.Model(&userDatamodel.User{}).Count(&users).Error).To(Succeed())
			Expect(users).To(BeZero())
		})
	})

	Describe("AfterCommit", func() {
		It("runs hooks only after a successful commit", func() {
			var calls []string
			err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
				store.AfterCommit(ctx, func() { calls = append(calls, "first") })
				store.AfterCommit(ctx, func() { calls = append(calls, "second") })
				Expect(calls).To(BeEmpty())
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"first", "second"}))
		})

		It("drops hooks when the transaction rolls back", func() {
			called := false
			_ = txm.WithinTransaction(ctx, func(ctx context.Context) error {
				store.AfterCommit(ctx, func() { called = true })
				return errors.New("boom")
			})
			Expect(called).To(BeFalse())
		})

		It("runs immediately outside a transaction", func() {
			called := false
			store.AfterCommit(ctx, func() { called = true })
			Expect(called).To(BeTrue())
		})
	})
})
