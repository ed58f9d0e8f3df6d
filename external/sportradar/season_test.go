package sportradar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
)

func TestSeasonResolverLeagueLinkWins(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
			<a href="/scigamingvirtuals/hu/1/season/111111">Other League</a>
			<a href="/scigamingvirtuals/hu/1/season/222222">Virtual Football League</a>
		`))
	}))
	defer srv.Close()

	r := NewSeasonResolver(SeasonResolverConfig{
		Client:      testClient(t, ClientConfig{}),
		CategoryURL: srv.URL,
		LeagueName:  "Virtual Football League",
		TTL:         time.Minute,
		Logger:      logging.NewNop(),
	})

	if id := r.Resolve(context.Background()); id != "222222" {
		t.Fatalf("id = %q, want league-qualified 222222", id)
	}
}

func TestSeasonResolverFallsBackToSeasonPath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="/x/season/333333">somewhere</a>`))
	}))
	defer srv.Close()

	r := NewSeasonResolver(SeasonResolverConfig{
		Client:      testClient(t, ClientConfig{}),
		CategoryURL: srv.URL,
		LeagueName:  "Virtual Football League",
		Logger:      logging.NewNop(),
	})

	if id := r.Resolve(context.Background()); id != "333333" {
		t.Fatalf("id = %q, want 333333", id)
	}
}

func TestSeasonResolverLargestNumericLastResort(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`page ids 123456 and 2345678 and 99`))
	}))
	defer srv.Close()

	r := NewSeasonResolver(SeasonResolverConfig{
		Client:      testClient(t, ClientConfig{}),
		CategoryURL: srv.URL,
		Logger:      logging.NewNop(),
	})

	if id := r.Resolve(context.Background()); id != "2345678" {
		t.Fatalf("id = %q, want largest candidate", id)
	}
}

func TestSeasonResolverKeepsStaleIDOnFailure(t *testing.T) {
	t.Parallel()

	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`<a href="/x/season/444444">s</a>`))
	}))
	defer srv.Close()

	r := NewSeasonResolver(SeasonResolverConfig{
		Client:      testClient(t, ClientConfig{}),
		CategoryURL: srv.URL,
		TTL:         time.Minute,
		Logger:      logging.NewNop(),
	})

	ctx := context.Background()
	if id := r.Resolve(ctx); id != "444444" {
		t.Fatalf("initial id = %q", id)
	}

	// Expire the TTL and break the upstream: the stale ID must survive and
	// its TTL must be re-armed.
	healthy.Store(false)
	r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if id := r.Resolve(ctx); id != "444444" {
		t.Fatalf("stale id = %q, want 444444", id)
	}
	current := r.Current()
	if current.ResolvedAt.Before(time.Now().Add(time.Minute)) {
		t.Fatal("failed refresh must re-arm the TTL")
	}
}

func TestSeasonResolverCachedWithinTTL(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<a href="/x/season/555555">s</a>`))
	}))
	defer srv.Close()

	r := NewSeasonResolver(SeasonResolverConfig{
		Client:      testClient(t, ClientConfig{}),
		CategoryURL: srv.URL,
		TTL:         time.Minute,
		Logger:      logging.NewNop(),
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if id := r.Resolve(ctx); id != "555555" {
			t.Fatalf("id = %q", id)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("category page fetched %d times, want 1", hits.Load())
	}
}
