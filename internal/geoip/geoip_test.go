package geoip

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeCache is an in-process LocationCache.
type fakeCache struct {
	entries map[string]string
	fail    bool
	sets    int
}

func (c *fakeCache) GetLocation(ctx context.Context, ip string) (string, error) {
	if c.fail {
		return "", errors.New("cache unavailable")
	}
	if loc, ok := c.entries[ip]; ok {
		return loc, nil
	}
	return "", errors.New("cache miss")
}

func (c *fakeCache) SetLocation(ctx context.Context, ip, location string) error {
	if c.fail {
		return errors.New("cache unavailable")
	}
	c.sets++
	c.entries[ip] = location
	return nil
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func newTestClient(t *testing.T, cache LocationCache, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL:    srv.URL,
		Cache:      cache,
		HTTPClient: srv.Client(),
	})
}

func TestLookup_ResolvesLocation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/203.0.113.7/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"city": "Berlin", "region": "Berlin", "country": "DE", "loc": "52.5,13.4"}`)
	})

	got := client.Lookup(context.Background(), "203.0.113.7")
	want := "Berlin, Berlin, DE (Coordinates: 52.5,13.4)"
	if got != want {
		t.Errorf("location mismatch: got %q, want %q", got, want)
	}
}

func TestLookup_SkipsEmptyParts(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"city": "", "region": "", "country": "DE"}`)
	})

	if got := client.Lookup(context.Background(), "203.0.113.7"); got != "DE" {
		t.Errorf("expected bare country, got %q", got)
	}
}

func TestLookup_DegradesOnProviderError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if got := client.Lookup(context.Background(), "203.0.113.7"); got != UnknownLocation {
		t.Errorf("expected %q, got %q", UnknownLocation, got)
	}
}

func TestLookup_DegradesOnNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := New(Config{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	srv.Close()

	if got := client.Lookup(context.Background(), "203.0.113.7"); got != UnknownLocation {
		t.Errorf("expected %q, got %q", UnknownLocation, got)
	}
}

func TestLookup_DegradesOnMalformedResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>rate limited</html>")
	})

	if got := client.Lookup(context.Background(), "203.0.113.7"); got != UnknownLocation {
		t.Errorf("expected %q, got %q", UnknownLocation, got)
	}
}

func TestLookup_EmptyIP(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider should not be called for an empty IP")
	})

	if got := client.Lookup(context.Background(), ""); got != UnknownLocation {
		t.Errorf("expected %q, got %q", UnknownLocation, got)
	}
}

func TestLookup_UsesCache(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	calls := 0
	client := newTestClient(t, cache, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"city": "Hanoi", "region": "HN", "country": "VN"}`)
	})

	first := client.Lookup(context.Background(), "203.0.113.7")
	second := client.Lookup(context.Background(), "203.0.113.7")

	if first != second {
		t.Errorf("cached lookup mismatch: %q vs %q", first, second)
	}
	if calls != 1 {
		t.Errorf("expected 1 provider call, got %d", calls)
	}
	if cache.sets != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.sets)
	}
}

func TestLookup_DoesNotCacheUnknown(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	client := newTestClient(t, cache, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if got := client.Lookup(context.Background(), "203.0.113.7"); got != UnknownLocation {
		t.Fatalf("expected %q, got %q", UnknownLocation, got)
	}
	if cache.sets != 0 {
		t.Errorf("degraded lookups must not be cached, got %d writes", cache.sets)
	}
}

func TestLookup_CacheFailureDegradesToProvider(t *testing.T) {
	t.Parallel()

	cache := newFakeCache()
	cache.fail = true
	client := newTestClient(t, cache, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"city": "Hanoi", "region": "HN", "country": "VN"}`)
	})

	if got := client.Lookup(context.Background(), "203.0.113.7"); got != "Hanoi, HN, VN" {
		t.Errorf("expected provider result despite cache failure, got %q", got)
	}
}
