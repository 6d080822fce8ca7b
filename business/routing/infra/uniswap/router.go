// Package uniswap implements the Router port on-chain: QuoterV2 for quotes,
// SwapRouter02 calldata for execution.
package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	bcdomain "github.com/fd1az/uniswap-swapper/business/blockchain/domain"
	"github.com/fd1az/uniswap-swapper/business/routing/app"
	"github.com/fd1az/uniswap-swapper/business/routing/domain"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
	"github.com/fd1az/uniswap-swapper/internal/circuitbreaker"
	"github.com/fd1az/uniswap-swapper/internal/logger"
)

const (
	tracerName = "uniswap"
	meterName  = "uniswap"

	// SourceOnchain tags routes built by this package.
	SourceOnchain = "uniswap-v3-onchain"
)

// Ensure Router implements app.Router.
var _ app.Router = (*Router)(nil)

// Caller executes read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// GasPricer supplies the gas price attached to the route.
type GasPricer interface {
	GetGasPrice(ctx context.Context) (*bcdomain.GasPrice, error)
}

// Config holds the contract addresses and fee tiers to search.
type Config struct {
	Quoter   common.Address
	Router   common.Address
	FeeTiers []int
}

// routerMetrics holds OTEL metric instruments.
type routerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	noRoute      metric.Int64Counter
}

// Router quotes every configured fee tier and builds calldata for the best.
type Router struct {
	client    Caller
	gas       GasPricer
	config    Config
	quoterABI abi.ABI
	routerABI abi.ABI

	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *routerMetrics
}

// NewRouter creates a new on-chain Uniswap V3 router.
func NewRouter(client Caller, gas GasPricer, cfg Config, log logger.LoggerInterface) (*Router, error) {
	quoterABI, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	routerABI, err := abi.JSON(strings.NewReader(SwapRouter02ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}

	if len(cfg.FeeTiers) == 0 {
		cfg.FeeTiers = []int{FeeTier001, FeeTier005, FeeTier030, FeeTier100}
	}

	r := &Router{
		client:    client,
		gas:       gas,
		config:    cfg,
		quoterABI: quoterABI,
		routerABI: routerABI,
		logger:    log,
		cb:        circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("uniswap-quoter")),
		tracer:    otel.Tracer(tracerName),
	}

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return r, nil
}

func (r *Router) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &routerMetrics{}

	r.metrics.quotesTotal, err = meter.Int64Counter(
		"uniswap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	r.metrics.quoteLatency, err = meter.Float64Histogram(
		"uniswap_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.metrics.quoteErrors, err = meter.Int64Counter(
		"uniswap_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	if err != nil {
		return err
	}

	r.metrics.noRoute, err = meter.Int64Counter(
		"uniswap_no_route_total",
		metric.WithDescription("Requests where no fee tier had a pool"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Route quotes every fee tier and returns the highest-output route, or nil
// when every tier reverts (no pool for the pair).
func (r *Router) Route(ctx context.Context, req domain.SwapRequest) (*domain.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tokenIn := req.AmountIn.Asset().Address()
	tokenOut := req.TokenOut.Address()
	amountIn := req.AmountIn.Raw()

	ctx, span := r.tracer.Start(ctx, "uniswap.route",
		trace.WithAttributes(
			attribute.String("token_in", tokenIn.Hex()),
			attribute.String("token_out", tokenOut.Hex()),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	start := time.Now()
	r.metrics.quotesTotal.Add(ctx, 1)

	var (
		bestQuote   *QuoteResult
		bestFeeTier int
		callErr     error
	)

	for _, feeTier := range r.config.FeeTiers {
		quote, err := r.quoteForFeeTier(ctx, tokenIn, tokenOut, amountIn, feeTier)
		if err != nil {
			span.AddEvent("fee_tier_failed",
				trace.WithAttributes(
					attribute.Int("fee_tier", feeTier),
					attribute.String("error", err.Error()),
				),
			)
			if !isRevert(err) {
				callErr = err
			}
			continue
		}

		if bestQuote == nil || quote.AmountOut.Cmp(bestQuote.AmountOut) > 0 {
			bestQuote = quote
			bestFeeTier = feeTier
		}
	}

	r.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if bestQuote == nil {
		if callErr != nil {
			r.metrics.quoteErrors.Add(ctx, 1)
			span.RecordError(callErr)
			span.SetStatus(codes.Error, "quote failed")
			return nil, apperror.New(apperror.CodeUniswapQuoteFailed,
				apperror.WithCause(callErr),
				apperror.WithContext("no fee tier could be quoted"))
		}
		r.metrics.noRoute.Add(ctx, 1)
		span.SetStatus(codes.Ok, "no route")
		return nil, nil
	}

	gasPrice, err := r.gas.GetGasPrice(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gas price failed")
		return nil, err
	}

	minOut := req.Options.SlippageTolerance.MinimumOut(bestQuote.AmountOut)

	calldata, err := r.buildCalldata(tokenIn, tokenOut, bestFeeTier, req.Options.Recipient, amountIn, minOut, req.Options.Deadline)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeInvalidRoute,
			apperror.WithCause(err),
			apperror.WithContext("failed to encode swap calldata"))
	}

	route := &domain.Route{
		Quote:            asset.NewAmount(req.TokenOut, bestQuote.AmountOut),
		GasPriceWei:      gasPrice.Wei,
		EstimatedGasUsed: bestQuote.GasEstimate.Uint64(),
		MethodParameters: domain.MethodParameters{
			Calldata: calldata,
			Value:    new(big.Int),
			To:       r.config.Router,
		},
		FeeTier: bestFeeTier,
		Source:  SourceOnchain,
	}

	span.SetAttributes(
		attribute.String("amount_out", bestQuote.AmountOut.String()),
		attribute.String("amount_out_min", minOut.String()),
		attribute.Int("fee_tier", bestFeeTier),
		attribute.Int64("gas_estimate", bestQuote.GasEstimate.Int64()),
	)
	span.SetStatus(codes.Ok, "route found")

	r.logger.Debug(ctx, "uniswap route",
		"token_in", tokenIn.Hex(),
		"token_out", tokenOut.Hex(),
		"amount_in", amountIn.String(),
		"amount_out", bestQuote.AmountOut.String(),
		"amount_out_min", minOut.String(),
		"fee_tier", bestFeeTier,
	)

	return route, nil
}

// quoteForFeeTier calls QuoterV2.quoteExactInputSingle for a specific fee tier.
func (r *Router) quoteForFeeTier(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, feeTier int) (*QuoteResult, error) {
	callData, err := r.quoterABI.Pack("quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(feeTier)),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	quoter := r.config.Quoter
	result, err := r.cb.Execute(func() ([]byte, error) {
		return r.client.CallContract(ctx, ethereum.CallMsg{
			To:   &quoter,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("quoter call failed for fee tier %d", feeTier)))
	}

	outputs, err := r.quoterABI.Unpack("quoteExactInputSingle", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	if len(outputs) < 4 {
		return nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	return &QuoteResult{
		AmountOut:               outputs[0].(*big.Int),
		SqrtPriceX96After:       outputs[1].(*big.Int),
		InitializedTicksCrossed: outputs[2].(uint32),
		GasEstimate:             outputs[3].(*big.Int),
	}, nil
}

// buildCalldata encodes multicall(deadline, [exactInputSingle(params)]).
func (r *Router) buildCalldata(tokenIn, tokenOut common.Address, feeTier int, recipient common.Address, amountIn, minOut, deadline *big.Int) ([]byte, error) {
	swap, err := r.routerABI.Pack("exactInputSingle", ExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		Fee:               big.NewInt(int64(feeTier)),
		Recipient:         recipient,
		AmountIn:          amountIn,
		AmountOutMinimum:  minOut,
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, err
	}

	return r.routerABI.Pack("multicall", deadline, [][]byte{swap})
}

// isRevert reports whether a quoter failure was an EVM revert, which QuoterV2
// returns for pools that do not exist.
func isRevert(err error) bool {
	return strings.Contains(err.Error(), "execution reverted")
}
