package jenkins

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	testCrumb      = "abc123def456"
	testCrumbField = "Jenkins-Crumb"
)

// fakeJenkins is an httptest server with a chi router standing in for
// a live instance. Tests register only the routes they exercise; the
// crumb issuer is wired by default so mutating calls work.
type fakeJenkins struct {
	mux *chi.Mux
	srv *httptest.Server

	// Counted atomically: some tests hit the issuer from concurrent
	// request goroutines.
	crumbRequests int32
	crumbStatus   int
}

func newFakeJenkins(t *testing.T) (*fakeJenkins, *JenkinsAPIClient) {
	t.Helper()
	f := &fakeJenkins{
		mux:         chi.NewRouter(),
		crumbStatus: http.StatusOK,
	}
	f.mux.Get("/crumbIssuer/api/json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.crumbRequests, 1)
		if f.crumbStatus != http.StatusOK {
			w.WriteHeader(f.crumbStatus)
			return
		}
		writeJSON(w, map[string]string{
			"crumb":             testCrumb,
			"crumbRequestField": testCrumbField,
		})
	})
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)

	client := New().
		SetUser("tester").
		SetToken("secret").
		SetBaseUrl(f.srv.URL)
	return f, client
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// requireCrumb fails the request when the CSRF header is missing, the
// same way Jenkins does.
func requireCrumb(t *testing.T, r *http.Request) bool {
	t.Helper()
	return r.Header.Get(testCrumbField) == testCrumb
}
