package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/metrics"
	"github.com/frahmantamala/shiftboard/internal/session"
	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("CORS", func() {
	It("allows every origin by default", func() {
		w := httptest.NewRecorder()
		CORS("")(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	It("echoes only configured origins", func() {
		h := CORS("https://a.example, https://b.example")(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://b.example")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://b.example"))
		Expect(w.Header().Get("Vary")).To(Equal("Origin"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("short-circuits preflight requests", func() {
		called := false
		h := CORS("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/shifts/123", nil))
		Expect(called).To(BeFalse())
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get("Access-Control-Allow-Methods")).To(Equal("GET, POST, PUT, DELETE, OPTIONS"))
	})
})

var _ = Describe("RequireAdmin", func() {
	serve := func(identity *session.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		if identity != nil {
			req = req.WithContext(auth.WithIdentity(req.Context(), identity))
		}
		w := httptest.NewRecorder()
		RequireAdmin(ok).ServeHTTP(w, req)
		return w
	}

	It("rejects anonymous requests", func() {
		w := serve(nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Body.String()).To(ContainSubstring(`"error":"unauthorized"`))
	})

	It("forbids non-admins", func() {
		w := serve(&session.Identity{UserID: "u1"})
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring(`"error":"forbidden"`))
	})

	It("passes admins through", func() {
		Expect(serve(&session.Identity{UserID: "u1", IsAdmin: true}).Code).To(Equal(http.StatusOK))
	})
})

var _ = Describe("RequestContext", func() {
	It("records method and path", func() {
		var got internal.RequestInfo
		h := RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = internal.RequestFromContext(r.Context())
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/shifts/9?x=1", nil))
		Expect(got).To(Equal(internal.RequestInfo{Method: http.MethodPut, Path: "/shifts/9"}))
	})
})

var _ = Describe("TraceID", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	serve := func(header string) (*httptest.ResponseRecorder, context.Context) {
		var ctx context.Context
		h := TraceID(logger.New(buf, "info", "json"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx = r.Context()
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(TraceIDHeader, header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w, ctx
	}

	It("keeps a caller supplied id and binds it to the logger", func() {
		w, ctx := serve("abc-123")
		Expect(w.Header().Get(TraceIDHeader)).To(Equal("abc-123"))

		lg, found := logger.Lookup(ctx)
		Expect(found).To(BeTrue())
		lg.Info("hello")
		Expect(buf.String()).To(ContainSubstring(`"trace_id":"abc-123"`))
	})

	It("mints an id when missing or oversized", func() {
		w, _ := serve("")
		Expect(w.Header().Get(TraceIDHeader)).To(HaveLen(36))

		w, _ = serve(strings.Repeat("x", 200))
		Expect(w.Header().Get(TraceIDHeader)).To(HaveLen(36))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a JSON 500", func() {
		h := RecoveryMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring(`"error":"internal server error"`))
	})

	It("re-panics on an aborted handler", func() {
		h := RecoveryMiddleware(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))
		Expect(func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}).To(PanicWith(http.ErrAbortHandler))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("masks credentials in bodies and headers", func() {
		buf := &bytes.Buffer{}
		h := LoggingMiddleware(logger.New(buf, "debug", "json"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","token":"leak"}`))
		}))

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"username":"admin","password_client_hash":"s3cret"}`))
		req.Header.Set("Authorization", "Bearer abc")
		h.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		Expect(out).To(ContainSubstring("admin"))
		Expect(out).NotTo(ContainSubstring("s3cret"))
		Expect(out).NotTo(ContainSubstring("Bearer abc"))
		Expect(out).NotTo(ContainSubstring("leak"))
		Expect(out).To(ContainSubstring(`"status_code":401`))
	})

	It("masks nested fields", func() {
		filtered := filterSensitiveBody([]byte(`{"user":{"name":"a","session_token":"t"},"items":[{"salt":"x"}]}`))
		Expect(filtered).To(ContainSubstring(`"name":"a"`))
		Expect(filtered).NotTo(ContainSubstring(`"t"`))
		Expect(filtered).NotTo(ContainSubstring(`"x"`))
	})

	It("drops non-JSON bodies that mention secrets", func() {
		Expect(filterSensitiveBody([]byte("password=hunter2"))).To(Equal("[FILTERED - Contains sensitive data]"))
		Expect(filterSensitiveBody([]byte("plain text"))).To(Equal("plain text"))
	})
})

var _ = Describe("Metrics", func() {
	It("labels requests by route pattern", func() {
		m := metrics.Nop()
		r := chi.NewRouter()
		r.Use(Metrics(m))
		r.Get("/shifts/{id}", ok)

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/shifts/42", nil))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

		Expect(testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/shifts/{id}", "200"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404"))).To(Equal(1.0))
	})
})
