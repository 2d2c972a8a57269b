package internal_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/shiftboard/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

var _ = Describe("Config", func() {
	It("fills documented defaults", func() {
		cfg := &internal.Config{}
		cfg.ApplyDefaults()

		Expect(cfg.Server.Port).To(Equal(8787))
		Expect(cfg.Database.Driver).To(Equal(internal.DriverSQLite))
		Expect(cfg.Database.Source).To(Equal(internal.DefaultSQLiteSource))
		Expect(cfg.Security.SessionTTL).To(Equal(30 * 24 * time.Hour))
		Expect(cfg.Security.HashIterations).To(Equal(internal.DefaultHashIterations))
		Expect(cfg.Audit.DefaultLimit).To(Equal(100))
		Expect(cfg.Audit.MaxLimit).To(Equal(500))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("rejects weak hashing and inverted audit limits together", func() {
		cfg := &internal.Config{
			Security: internal.SecurityConfig{HashIterations: 10},
			Audit:    internal.AuditConfig{DefaultLimit: 50, MaxLimit: 10},
		}
		cfg.ApplyDefaults()

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("hash_iterations must be at least 100000"))
		Expect(err.Error()).To(ContainSubstring("default_limit cannot exceed max_limit"))
	})

	It("rejects an audit max_limit above 500", func() {
		cfg := &internal.Config{Audit: internal.AuditConfig{DefaultLimit: 100, MaxLimit: 5000}}
		cfg.ApplyDefaults()
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_limit cannot exceed 500")))

		cfg.Audit.MaxLimit = 500
		Expect(cfg.Validate()).To(Succeed())
	})

	It("rejects unknown drivers", func() {
		cfg := &internal.Config{Database: internal.DatabaseConfig{Driver: "mysql", Source: "x"}}
		cfg.ApplyDefaults()
		Expect(cfg.Validate()).To(MatchError(ContainSubstring(`unsupported driver "mysql"`)))
	})

	It("requires a postgres source", func() {
		cfg := &internal.Config{Database: internal.DatabaseConfig{Driver: internal.DriverPostgres}}
		cfg.ApplyDefaults()
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("source is required")))
	})

	Describe("LoadConfigFromEnv", func() {
		setenv := func(key, value string) {
			old, had := os.LookupEnv(key)
			Expect(os.Setenv(key, value)).To(Succeed())
			DeferCleanup(func() {
				if had {
					_ = os.Setenv(key, old)
				} else {
					_ = os.Unsetenv(key)
				}
			})
		}

		It("reads SCHED_ variables", func() {
			setenv("SCHED_PORT", "9000")
			setenv("SCHED_DB_PATH", "/tmp/sched.db")
			setenv("SCHED_SESSION_TTL", "2h")
			setenv("SCHED_METRICS_ENABLED", "true")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Server.Port).To(Equal(9000))
			Expect(cfg.Database.Source).To(Equal("/tmp/sched.db"))
			Expect(cfg.Security.SessionTTL).To(Equal(2 * time.Hour))
			Expect(cfg.Observability.Metrics.Enabled).To(BeTrue())
			Expect(cfg.Observability.Logging.Format).To(Equal("json"))
		})

		It("ignores malformed numbers", func() {
			setenv("SCHED_PORT", "eighty")
			Expect(internal.LoadConfigFromEnv().Server.Port).To(Equal(8787))
		})
	})
})

var _ = Describe("AppError", func() {
	It("matches sentinels through wrapping and copies", func() {
		wrapped := internal.ErrUserNotFound.WithCause(errors.New("sql: no rows"))
		Expect(errors.Is(wrapped, internal.ErrUserNotFound)).To(BeTrue())
		Expect(errors.Is(wrapped, internal.ErrShiftNotFound)).To(BeFalse())
		Expect(internal.ErrUserNotFound.Cause).To(BeNil())
	})

	It("renders the JSON body with the joined message", func() {
		err := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "a", Message: "a is required"},
				{Field: "b", Message: "b is required"},
			}})
		status, body := err.ToHTTPResponse()
		Expect(status).To(Equal(400))
		Expect(body).To(Equal(internal.Response{Error: "a is required; b is required", Code: internal.ErrCodeValidationFailed}))
	})
})

var _ = Describe("Request context", func() {
	It("returns the zero value when unset", func() {
		Expect(internal.RequestFromContext(nil)).To(Equal(internal.RequestInfo{}))
	})
})
