package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/cache"
)

func TestMain(m *testing.M) {
	premortem.RetryBase = time.Millisecond
	os.Exit(m.Run())
}

func TestCatalog(t *testing.T) {
	c := NewDefaultCatalog()
	ctx := context.Background()

	tests := []struct {
		query string
		want  premortem.AuthoritativeLookup
	}{
		{"patient insulin dosage", premortem.AuthoritativeLookup{Source: premortem.OpenFDA, Found: true, Reference: "FDA-CFR-21-PARTS-200-299"}},
		{"FENTANYL interaction", premortem.AuthoritativeLookup{Source: premortem.OpenFDA, Found: true, Reference: "FDA-CFR-21-PARTS-200-299"}},
		{"load balancer misconfiguration", premortem.AuthoritativeLookup{Source: premortem.NIST, Found: true, Reference: "NIST-SP-800-53-R5"}},
		{"", premortem.AuthoritativeLookup{Source: premortem.NIST, Found: true, Reference: "NIST-SP-800-53-R5"}},
	}
	for _, tt := range tests {
		got, err := c.Lookup(ctx, tt.query)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestCatalogCapsQuery(t *testing.T) {
	c := NewDefaultCatalog()
	// The restricted term sits beyond the cap and must not be seen.
	q := strings.Repeat("a", premortem.MaxLookupQueryBytes) + " insulin"
	got, err := c.Lookup(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, premortem.NIST, got.Source)
}

func registryServer(t *testing.T, handler http.HandlerFunc) *Registry {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRegistry(premortem.RegistryConfig{BaseURL: srv.URL + "/", Timeout: time.Second, Retries: 2}, srv.Client())
}

func TestRegistryLookup(t *testing.T) {
	r := registryServer(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/v1/lookup", req.URL.Path)
		assert.Equal(t, "patient insulin dosage", req.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"source":"RxNorm","found":true,"reference":"RXCUI-5856"}`))
	})
	got, err := r.Lookup(context.Background(), "patient insulin dosage")
	require.NoError(t, err)
	assert.Equal(t, premortem.AuthoritativeLookup{Source: premortem.RxNorm, Found: true, Reference: "RXCUI-5856"}, got)
}

func TestRegistryRetriesServerErrors(t *testing.T) {
	var calls int32
	r := registryServer(t, func(w http.ResponseWriter, req *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"source":"NIST","found":false,"reference":""}`))
	})
	got, err := r.Lookup(context.Background(), "disk")
	require.NoError(t, err)
	assert.False(t, got.Found)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRegistryFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		calls   int32
		bad     bool
	}{
		{"server error exhausts retries", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, 3, false},
		{"client error is not retried", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}, 1, false},
		{"malformed body is not retried", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`not json`))
		}, 1, true},
		{"missing found flag", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"source":"NIST"}`))
		}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			r := registryServer(t, func(w http.ResponseWriter, req *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, req)
			})
			got, err := r.Lookup(context.Background(), "load balancer")
			assert.True(t, premortem.IsLookupUnavailable(err))
			assert.Equal(t, premortem.AuthoritativeLookup{Source: premortem.NIST, Found: false}, got)
			assert.Equal(t, tt.calls, atomic.LoadInt32(&calls))
			assert.Equal(t, tt.bad, errors.Is(err, ErrBadResponse))
			assert.NotEqual(t, premortem.MalformedScenario, premortem.CodeOf(errors.Unwrap(err)))
		})
	}
}

func TestRegistryTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-block:
		case <-req.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	r := NewRegistry(premortem.RegistryConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, srv.Client())
	got, err := r.Lookup(context.Background(), "anything")
	assert.True(t, premortem.IsLookupUnavailable(err))
	assert.False(t, got.Found)
}

type countingLookup struct {
	calls int32
	err   error
}

func (c *countingLookup) Lookup(_ context.Context, q string) (premortem.AuthoritativeLookup, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return premortem.AuthoritativeLookup{Source: premortem.NIST}, c.err
	}
	return premortem.AuthoritativeLookup{Source: premortem.NIST, Found: true, Reference: q}, nil
}

func TestCached(t *testing.T) {
	next := &countingLookup{}
	l := NewCached(next, cache.NewInMemoryCache(0), time.Minute)
	ctx := context.Background()

	first, err := l.Lookup(ctx, "Load Balancer")
	require.NoError(t, err)
	second, err := l.Lookup(ctx, "  load balancer ")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.calls))
}

func TestCachedSkipsFailures(t *testing.T) {
	next := &countingLookup{err: premortem.NewError(premortem.LookupUnavailable, errors.New("down"), nil)}
	l := NewCached(next, cache.NewInMemoryCache(0), time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := l.Lookup(ctx, "q")
		assert.Error(t, err)
		assert.False(t, got.Found)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&next.calls))
}

func TestNewCachedWithoutCache(t *testing.T) {
	next := &countingLookup{}
	assert.Same(t, next, NewCached(next, nil, time.Minute))
}

func TestFromConfig(t *testing.T) {
	cfg := premortem.DefaultConfig()
	l, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Catalog{}, l)

	cfg.Cache.Type = premortem.InMemoryCache
	cfg.Registry.BaseURL = "http://registry.invalid"
	l, err = FromConfig(cfg)
	require.NoError(t, err)
	c, ok := l.(*Cached)
	require.True(t, ok)
	assert.IsType(t, &Registry{}, c.next)
}
