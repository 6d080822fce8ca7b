package httpclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fd1az/uniswap-swapper/internal/httpclient"
)

func TestClient_GetDecodesJSON(t *testing.T) {
	var gotQuery url.Values
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quote":"42"}`))
	}))
	defer srv.Close()

	c, err := httpclient.New(
		httpclient.WithBaseURL(srv.URL+"/v1"),
		httpclient.WithHeaders(map[string]string{"x-api-key": "secret"}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Quote string `json:"quote"`
	}
	resp, err := c.Get(context.Background(), "/quote", url.Values{"amount": {"1"}}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.IsError() {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if out.Quote != "42" {
		t.Errorf("expected quote 42, got %q", out.Quote)
	}
	if gotQuery.Get("amount") != "1" {
		t.Errorf("expected amount query param, got %v", gotQuery)
	}
	if gotKey != "secret" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
}

func TestClient_ErrorStatusSkipsDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorCode":"NO_ROUTE"}`))
	}))
	defer srv.Close()

	c, err := httpclient.New(httpclient.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out map[string]any
	resp, err := c.Get(context.Background(), "quote", nil, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsError() || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if out != nil {
		t.Errorf("expected result untouched, got %v", out)
	}
	if resp.String() != `{"errorCode":"NO_ROUTE"}` {
		t.Errorf("unexpected body %s", resp.String())
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestClient_CustomRoundTripper(t *testing.T) {
	var calls int
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
			Request:    r,
		}, nil
	})

	c, err := httpclient.New(
		httpclient.WithBaseURL("http://routing.invalid"),
		httpclient.WithRoundTripper(rt),
		httpclient.WithResponseLogging(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	if _, err := c.Get(context.Background(), "/quote", nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || !out.OK {
		t.Errorf("expected one decoded call, got calls=%d out=%+v", calls, out)
	}
}
