package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sharedcode/premortem"
)

// Registry queries a remote reference registry over HTTP:
//
//	GET {BaseURL}/v1/lookup?q=<query>  ->  {"source": "...", "found": true, "reference": "..."}
//
// Any failure yields a not-found result citing FallbackSource together with a
// LookupUnavailable error.
type Registry struct {
	BaseURL        string
	Timeout        time.Duration
	Retries        uint64
	FallbackSource premortem.LookupSource
	client         *http.Client
}

// NewRegistry creates a registry client from cfg. The fallback source is NIST.
func NewRegistry(cfg premortem.RegistryConfig, client *http.Client) *Registry {
	if client == nil {
		client = http.DefaultClient
	}
	return &Registry{
		BaseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		Timeout:        cfg.Timeout,
		Retries:        cfg.Retries,
		FallbackSource: premortem.NIST,
		client:         client,
	}
}

// ErrBadResponse is wrapped by failures caused by an unusable registry request or answer.
// They are not retried.
var ErrBadResponse = errors.New("bad reference registry response")

type registryResponse struct {
	Source    premortem.LookupSource `json:"source"`
	Found     *bool                  `json:"found"`
	Reference string                 `json:"reference"`
}

// Lookup sends query to the registry, retrying transient failures.
func (r *Registry) Lookup(ctx context.Context, query string) (premortem.AuthoritativeLookup, error) {
	var result premortem.AuthoritativeLookup
	err := premortem.RetryN(ctx, r.Retries, func(ctx context.Context) error {
		var err error
		result, err = r.lookupOnce(ctx, query)
		return err
	}, nil)
	if err != nil {
		log.Warn("reference registry lookup failed", "base_url", r.BaseURL, "error", err)
		return premortem.AuthoritativeLookup{Source: r.FallbackSource, Found: false},
			premortem.NewError(premortem.LookupUnavailable, err, nil)
	}
	return result, nil
}

func (r *Registry) lookupOnce(ctx context.Context, query string) (premortem.AuthoritativeLookup, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	u := fmt.Sprintf("%s/v1/lookup?q=%s", r.BaseURL, url.QueryEscape(premortem.CapQuery(query)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return premortem.AuthoritativeLookup{}, premortem.Permanent(fmt.Errorf("%w: %w", ErrBadResponse, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return premortem.AuthoritativeLookup{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return premortem.AuthoritativeLookup{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return premortem.AuthoritativeLookup{}, premortem.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var rr registryResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return premortem.AuthoritativeLookup{}, premortem.Permanent(fmt.Errorf("%w: %w", ErrBadResponse, err))
	}
	if rr.Source == "" || rr.Found == nil {
		return premortem.AuthoritativeLookup{}, premortem.Permanent(fmt.Errorf("%w: missing source or found in %s", ErrBadResponse, body))
	}
	return premortem.AuthoritativeLookup{Source: rr.Source, Found: *rr.Found, Reference: rr.Reference}, nil
}
