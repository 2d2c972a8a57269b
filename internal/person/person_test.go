package person_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	userDatamodel "github.com/frahmantamala/shiftboard/internal/core/datamodel/user"
	"github.com/frahmantamala/shiftboard/internal/person"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPerson(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Person Suite")
}

type stubRepository struct {
	rows []*userDatamodel.Person
	err  error
}

func (s stubRepository) List(ctx context.Context) ([]*userDatamodel.Person, error) {
	return s.rows, s.err
}

var _ = Describe("People", func() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	It("exposes only the id, name and timestamps", func() {
		svc := person.NewService(stubRepository{rows: []*userDatamodel.Person{
			{ID: "p1", PersonNameB64: userDatamodel.EncodeName("Alice"), CreatedAt: "c", UpdatedAt: "u"},
		}}, logger)

		w := httptest.NewRecorder()
		person.NewHandler(svc).ListPeople(w, httptest.NewRequest(http.MethodGet, "/people", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"people":[{"id":"p1","person_name_b64":"QWxpY2U=","created_at":"c","updated_at":"u"}]}`))
	})

	It("returns an empty array rather than null", func() {
		w := httptest.NewRecorder()
		person.NewHandler(person.NewService(stubRepository{}, logger)).
			ListPeople(w, httptest.NewRequest(http.MethodGet, "/people", nil))
		Expect(w.Body.String()).To(MatchJSON(`{"people":[]}`))
	})

	It("maps repository failures to 500", func() {
		w := httptest.NewRecorder()
		person.NewHandler(person.NewService(stubRepository{err: errors.New("down")}, logger)).
			ListPeople(w, httptest.NewRequest(http.MethodGet, "/people", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
