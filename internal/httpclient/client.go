package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/uniswap-swapper/internal/ratelimit"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter  = "http_client_requests_total"
	metricRequestDuration = "http_client_request_duration_seconds"

	instrumentationName = "github.com/fd1az/uniswap-swapper/internal/httpclient"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	body       []byte
}

// Body returns the response body as bytes.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as string.
func (r *Response) String() string {
	return string(r.body)
}

// IsError returns true if the status code indicates an error (>= 400).
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// Client is an OTEL-instrumented JSON HTTP client.
type Client struct {
	client          *http.Client
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
	tracer          trace.Tracer
	providerName    string
	baseURL         string
	headers         map[string]string
	limiter         *ratelimit.Limiter
	logResponse     bool
}

// New creates a new instrumented HTTP client.
func New(opts ...ClientOption) (*Client, error) {
	options := newClientOptions(opts...)

	transport := options.roundTripper
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		}
	}

	httpClient := &http.Client{
		Timeout: options.requestTimeout,
		Transport: otelhttp.NewTransport(
			transport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}

	meterProvider := options.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter(instrumentationName)

	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		metricRequestDuration,
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tracer := options.tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	return &Client{
		client:          httpClient,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
		tracer:          tracer,
		providerName:    options.providerName,
		baseURL:         options.baseURL,
		headers:         options.headers,
		limiter:         options.limiter,
		logResponse:     options.logResponse,
	}, nil
}

// Get issues a GET for path (relative to the base URL) with the given query.
// When result is non-nil and the status is below 400 the body is decoded into it.
func (c *Client) Get(ctx context.Context, path string, query url.Values, result any) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, result)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, result any) (*Response, error) {
	fullURL := c.resolve(path, query)

	ctx, span := c.tracer.Start(ctx, "http.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", fullURL),
			attribute.String("provider", c.providerName),
		),
	)
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.recordError(ctx, span, err)
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.recordError(ctx, span, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordError(ctx, span, err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.requestDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("provider", c.providerName)))

	if c.logResponse {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(body)),
		))
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		body:       body,
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if response.IsError() {
		span.SetStatus(codes.Error, resp.Status)
		c.recordMetrics(ctx, false)
		return response, nil
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to decode body")
			c.recordMetrics(ctx, false)
			return response, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	c.recordMetrics(ctx, true)
	return response, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	fullURL := path
	if c.baseURL != "" && !strings.HasPrefix(path, "http") {
		fullURL = strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + query.Encode()
	}
	return fullURL
}

func (c *Client) recordError(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	c.recordMetrics(ctx, false)
}

func (c *Client) recordMetrics(ctx context.Context, success bool) {
	c.requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", c.providerName),
		attribute.Bool("success", success),
	))
}
