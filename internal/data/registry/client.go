// # internal/data/registry/client.go
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"envinfer/internal/core/config"
	"envinfer/internal/shared/observability"
	"envinfer/internal/shared/util"
)

var (
	// ErrNotFound is returned when a package doesn't exist in the registry.
	ErrNotFound = errors.New("package not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
	// 5xx responses).
	ErrNetwork = errors.New("registry network error")

	// ErrNoStableRelease is returned when every published version of a
	// package carries a prerelease marker.
	ErrNoStableRelease = errors.New("no stable release")
)

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Client queries a PyPI-compatible registry for published package versions.
// Requests are paced by a shared rate limiter so project-wide lookups stay
// under the remote service's limits. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *util.Limiter
}

func NewClient(cfg config.Registry) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: util.NewIntervalLimiter(cfg.RequestInterval, cfg.Burst),
	}
}

// NormalizeName converts a package name to its canonical registry form,
// following PEP 503 (lowercase, underscores to hyphens).
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

type releaseDocument struct {
	Releases map[string]json.RawMessage `json:"releases"`
}

// Releases returns the published version identifiers for a package,
// sorted lexicographically.
func (c *Client) Releases(ctx context.Context, name string) ([]string, error) {
	if err := c.limiter.Wait(ctx, 1); err != nil {
		return nil, err
	}

	var doc releaseDocument
	url := fmt.Sprintf("%s/%s/json", c.baseURL, NormalizeName(name))
	err := retry(ctx, 2, 500*time.Millisecond, func() error {
		return c.getJSON(ctx, url, &doc)
	})
	if err != nil {
		return nil, err
	}
	return util.SortedStringKeys(doc.Releases), nil
}

// OldestStable returns the earliest published version of a package whose
// identifier carries no prerelease marker.
func (c *Client) OldestStable(ctx context.Context, name string) (string, error) {
	versions, err := c.Releases(ctx, name)
	if err != nil {
		return "", err
	}

	var stable []string
	for _, v := range versions {
		if !IsPrerelease(v) {
			stable = append(stable, v)
		}
	}
	if len(stable) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoStableRelease, name)
	}
	return oldestVersion(stable), nil
}

// IsPrerelease reports whether a version identifier carries an alpha,
// beta, or release-candidate marker. The check is a plain substring
// match, so e.g. "1.0.0b2" and "2.0rc1" are both prereleases.
func IsPrerelease(v string) bool {
	return strings.Contains(v, "a") || strings.Contains(v, "b") || strings.Contains(v, "rc")
}

// oldestVersion picks the minimum by semantic ordering, comparing
// unparsable identifiers lexicographically.
func oldestVersion(versions []string) string {
	best := ""
	var bestParsed *goversion.Version
	for _, candidate := range versions {
		parsed, err := goversion.NewVersion(candidate)
		if err != nil {
			parsed = nil
		}
		if best == "" || versionLess(candidate, parsed, best, bestParsed) {
			best, bestParsed = candidate, parsed
		}
	}
	return best
}

func versionLess(a string, av *goversion.Version, b string, bv *goversion.Version) bool {
	if av != nil && bv != nil {
		return av.LessThan(bv)
	}
	return a < b
}

func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		observability.RegistryRequestsTotal.WithLabelValues("error").Inc()
		return &retryableError{err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}

	observability.RegistryRequestsTotal.WithLabelValues("ok").Inc()
	return json.NewDecoder(resp.Body).Decode(v)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		observability.RegistryRequestsTotal.WithLabelValues("not_found").Inc()
		return ErrNotFound
	case code >= 500:
		observability.RegistryRequestsTotal.WithLabelValues("error").Inc()
		return &retryableError{err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		observability.RegistryRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// retry executes fn up to attempts times with doubling backoff. Only
// errors wrapped as retryable are retried; others return immediately.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errors.As(err, new(*retryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
