// Package routingapi implements the Router port over the Uniswap routing
// HTTP API.
package routingapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/uniswap-swapper/business/routing/app"
	"github.com/fd1az/uniswap-swapper/business/routing/domain"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
	"github.com/fd1az/uniswap-swapper/internal/circuitbreaker"
	"github.com/fd1az/uniswap-swapper/internal/httpclient"
	"github.com/fd1az/uniswap-swapper/internal/logger"
	"github.com/fd1az/uniswap-swapper/internal/ratelimit"
)

const (
	tracerName = "routingapi"

	// SourceAPI tags routes returned by the routing API.
	SourceAPI = "uniswap-routing-api"

	errorCodeNoRoute = "NO_ROUTE"
)

var _ app.Router = (*Client)(nil)

// Config holds the routing API endpoint settings.
type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	Timeout           time.Duration
}

// quoteResponse is the subset of the /quote payload the swapper consumes.
type quoteResponse struct {
	Quote            string `json:"quote"`
	QuoteDecimals    string `json:"quoteDecimals"`
	GasUseEstimate   string `json:"gasUseEstimate"`
	GasPriceWei      string `json:"gasPriceWei"`
	MethodParameters *struct {
		Calldata string `json:"calldata"`
		Value    string `json:"value"`
		To       string `json:"to"`
	} `json:"methodParameters"`
}

type errorResponse struct {
	ErrorCode string `json:"errorCode"`
	Detail    string `json:"detail"`
}

// Client asks the routing API for a quote with prebuilt calldata.
type Client struct {
	http   *httpclient.Client
	cb     *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger logger.LoggerInterface
	tracer trace.Tracer
	now    func() time.Time
}

// NewClient creates a routing API client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	opts := []httpclient.ClientOption{
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithProviderName("uniswap-routing-api"),
		httpclient.WithTracer(otel.Tracer(tracerName)),
		httpclient.WithResponseLogging(),
	}
	if cfg.APIKey != "" {
		opts = append(opts, httpclient.WithHeaders(map[string]string{"x-api-key": cfg.APIKey}))
	}
	if cfg.RequestsPerMinute > 0 {
		opts = append(opts, httpclient.WithRateLimiter(ratelimit.New(cfg.RequestsPerMinute)))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithRequestTimeout(cfg.Timeout))
	}

	hc, err := httpclient.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &Client{
		http:   hc,
		cb:     circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("routing-api")),
		logger: log,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}, nil
}

// Route requests an exact-input quote. A NO_ROUTE answer yields a nil route.
func (c *Client) Route(ctx context.Context, req domain.SwapRequest) (*domain.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "routingapi.route",
		trace.WithAttributes(
			attribute.String("token_in", req.AmountIn.Asset().Address().Hex()),
			attribute.String("token_out", req.TokenOut.Address().Hex()),
			attribute.String("amount_in", req.AmountIn.Raw().String()),
		),
	)
	defer span.End()

	query := c.buildQuery(req)

	resp, err := c.cb.Execute(func() (*httpclient.Response, error) {
		resp, err := c.http.Get(ctx, "/quote", query, nil)
		if err != nil {
			return nil, err
		}
		// Only server errors count against the breaker.
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("routing api status %d: %s", resp.StatusCode, resp.String())
		}
		return resp, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, apperror.Wrap(err, apperror.CodeRoutingAPIError, "quote request")
	}

	if resp.IsError() {
		var apiErr errorResponse
		_ = json.Unmarshal(resp.Body(), &apiErr)

		if resp.StatusCode == http.StatusNotFound || apiErr.ErrorCode == errorCodeNoRoute {
			span.SetStatus(codes.Ok, "no route")
			c.logger.Debug(ctx, "routing api found no route", "detail", apiErr.Detail)
			return nil, nil
		}

		span.SetStatus(codes.Error, "api error")
		return nil, apperror.New(apperror.CodeRoutingAPIError,
			apperror.WithContext(fmt.Sprintf("status %d %s: %s", resp.StatusCode, apiErr.ErrorCode, apiErr.Detail)))
	}

	var body quoteResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeInvalidRoute,
			apperror.WithCause(err),
			apperror.WithContext("decode quote response"))
	}

	route, err := toRoute(req, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid route")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("amount_out", route.Quote.Raw().String()),
		attribute.Int64("gas_estimate", int64(route.EstimatedGasUsed)),
	)
	span.SetStatus(codes.Ok, "route found")

	return route, nil
}

func (c *Client) buildQuery(req domain.SwapRequest) url.Values {
	tokenIn := req.AmountIn.Asset()

	// The API takes the deadline as seconds from now.
	remaining := new(big.Int).Sub(req.Options.Deadline, big.NewInt(c.now().Unix()))
	if remaining.Sign() <= 0 {
		remaining = big.NewInt(1)
	}

	return url.Values{
		"tokenInAddress":    {tokenIn.Address().Hex()},
		"tokenInChainId":    {strconv.FormatUint(tokenIn.ChainID(), 10)},
		"tokenOutAddress":   {req.TokenOut.Address().Hex()},
		"tokenOutChainId":   {strconv.FormatUint(req.TokenOut.ChainID(), 10)},
		"amount":            {req.AmountIn.Raw().String()},
		"type":              {req.TradeType.String()},
		"recipient":         {req.Options.Recipient.Hex()},
		"slippageTolerance": {req.Options.SlippageTolerance.Decimal().String()},
		"deadline":          {remaining.String()},
	}
}

func toRoute(req domain.SwapRequest, body quoteResponse) (*domain.Route, error) {
	invalid := func(what string, err error) error {
		return apperror.New(apperror.CodeInvalidRoute,
			apperror.WithCause(err),
			apperror.WithContext(what))
	}

	if body.MethodParameters == nil {
		return nil, invalid("response has no method parameters", nil)
	}

	quote, ok := new(big.Int).SetString(body.Quote, 10)
	if !ok || quote.Sign() < 0 {
		return nil, invalid(fmt.Sprintf("quote %q", body.Quote), nil)
	}

	gasPrice, ok := new(big.Int).SetString(body.GasPriceWei, 10)
	if !ok || gasPrice.Sign() < 0 {
		return nil, invalid(fmt.Sprintf("gasPriceWei %q", body.GasPriceWei), nil)
	}

	gasUsed, err := strconv.ParseUint(body.GasUseEstimate, 10, 64)
	if err != nil {
		return nil, invalid("gasUseEstimate", err)
	}

	calldata, err := hexutil.Decode(body.MethodParameters.Calldata)
	if err != nil {
		return nil, invalid("calldata", err)
	}

	value, err := parseHexBig(body.MethodParameters.Value)
	if err != nil {
		return nil, invalid("value", err)
	}

	if !common.IsHexAddress(body.MethodParameters.To) {
		return nil, invalid(fmt.Sprintf("to %q", body.MethodParameters.To), nil)
	}

	return &domain.Route{
		Quote:            asset.NewAmount(req.TokenOut, quote),
		GasPriceWei:      gasPrice,
		EstimatedGasUsed: gasUsed,
		MethodParameters: domain.MethodParameters{
			Calldata: calldata,
			Value:    value,
			To:       common.HexToAddress(body.MethodParameters.To),
		},
		Source: SourceAPI,
	}, nil
}

// parseHexBig accepts non-negative 0x-prefixed quantities with leading zeros ("0x00").
func parseHexBig(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return v, nil
}
