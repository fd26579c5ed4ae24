// Package postgrest reads the dashboard's upstream records from a PostgREST
// endpoint, such as the REST interface of a hosted Supabase project.
package postgrest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options tunes the HTTP client.
type Options struct {
	Timeout    time.Duration
	RetryCount int
}

// Error is the error body PostgREST returns with a non-2xx status.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest %d: %s", e.Status, e.Message)
}

// Store implements store.Store over PostgREST.
type Store struct {
	client *resty.Client
}

// New returns a store for the PostgREST API rooted at baseURL. apiKey, when
// set, is sent both as the apikey header and as a bearer token.
func New(baseURL, apiKey string, opts Options) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader("apikey", apiKey).SetAuthToken(apiKey)
	}
	return &Store{client: client}
}

func (s *Store) get(ctx context.Context, table string, params url.Values, out interface{}) error {
	apiErr := &Error{}
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(out).
		SetError(apiErr).
		Get("/" + table)
	if err != nil {
		return fmt.Errorf("get %s: %w", table, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = resp.Status()
		}
		return fmt.Errorf("get %s: %w", table, apiErr)
	}
	return nil
}

func (s *Store) rpc(ctx context.Context, fn string, args map[string]interface{}, out interface{}) error {
	apiErr := &Error{}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(args).
		SetResult(out).
		SetError(apiErr).
		Post("/rpc/" + fn)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", fn, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = resp.Status()
		}
		return fmt.Errorf("rpc %s: %w", fn, apiErr)
	}
	return nil
}

// Ping reads a single hospital id.
func (s *Store) Ping(ctx context.Context) error {
	var rows []struct {
		ID string `json:"id"`
	}
	return s.get(ctx, "hospitals", url.Values{"select": {"id"}, "limit": {"1"}}, &rows)
}

func (s *Store) Close() {
	s.client.GetClient().CloseIdleConnections()
}

// Filter operators in PostgREST's query syntax.

func eq(v string) string { return "eq." + v }

func gte(t time.Time) string { return "gte." + t.UTC().Format(time.RFC3339) }

func gteDate(t time.Time) string { return "gte." + t.UTC().Format("2006-01-02") }

func ilikeContains(v string) string {
	return "ilike.*" + strings.ReplaceAll(v, "*", "") + "*"
}

func in(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}
