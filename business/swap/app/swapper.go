package app

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	bcapp "github.com/fd1az/uniswap-swapper/business/blockchain/app"
	bcdomain "github.com/fd1az/uniswap-swapper/business/blockchain/domain"
	routingapp "github.com/fd1az/uniswap-swapper/business/routing/app"
	routingdomain "github.com/fd1az/uniswap-swapper/business/routing/domain"
	"github.com/fd1az/uniswap-swapper/business/swap/domain"
	tokenapp "github.com/fd1az/uniswap-swapper/business/token/app"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
	"github.com/fd1az/uniswap-swapper/internal/logger"
)

const (
	tracerName = "swap"
	meterName  = "swap"
)

// Config fixes the parameters of a run. Deadline and slippage are computed
// once at config load.
type Config struct {
	Router                common.Address
	SlippageTolerance     routingdomain.Percent
	Deadline              *big.Int
	GasLimit              uint64
	ApprovalConfirmations uint64
}

type swapMetrics struct {
	runs         metric.Int64Counter
	approvals    metric.Int64Counter
	routeLatency metric.Float64Histogram
}

// Swapper runs a single exact-input swap from TokenIn to TokenOut.
type Swapper struct {
	wallet   bcapp.Wallet
	tokenIn  *tokenapp.Token
	tokenOut *tokenapp.Token
	router   routingapp.Router
	reporter Reporter
	config   Config

	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *swapMetrics
	now     func() time.Time
}

// NewSwapper creates a Swapper.
func NewSwapper(
	wallet bcapp.Wallet,
	tokenIn, tokenOut *tokenapp.Token,
	router routingapp.Router,
	reporter Reporter,
	cfg Config,
	log logger.LoggerInterface,
) (*Swapper, error) {
	s := &Swapper{
		wallet:   wallet,
		tokenIn:  tokenIn,
		tokenOut: tokenOut,
		router:   router,
		reporter: reporter,
		config:   cfg,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return s, nil
}

func (s *Swapper) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &swapMetrics{}

	s.metrics.runs, err = meter.Int64Counter(
		"swap_runs_total",
		metric.WithDescription("Swap runs by outcome"),
	)
	if err != nil {
		return err
	}

	s.metrics.approvals, err = meter.Int64Counter(
		"swap_approvals_total",
		metric.WithDescription("Approval transactions submitted"),
	)
	if err != nil {
		return err
	}

	s.metrics.routeLatency, err = meter.Float64Histogram(
		"swap_route_latency_ms",
		metric.WithDescription("Route request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Submission is a swap transaction accepted by the node.
type Submission struct {
	Hash    common.Hash
	Summary string
	Route   *routingdomain.Route

	swapper *Swapper
}

// Run executes the swap up to submission. The returned Submission's Wait
// blocks for the receipt.
func (s *Swapper) Run(ctx context.Context, amountArg string) (_ *Submission, err error) {
	ctx, span := s.tracer.Start(ctx, "swap.run",
		trace.WithAttributes(
			attribute.String("token_in", s.tokenIn.Symbol()),
			attribute.String("token_out", s.tokenOut.Symbol()),
		),
	)
	defer span.End()

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(apperror.GetCode(err)))
			s.metrics.runs.Add(ctx, 1, metric.WithAttributes(
				attribute.String("outcome", string(domain.OutcomeOf(err)))))
		}
	}()

	// 1. Validate input
	s.begin(domain.StepValidate)
	amountArg = strings.TrimSpace(amountArg)
	if amountArg == "" {
		return nil, s.fail(domain.StepValidate, apperror.New(apperror.CodeMissingAmount,
			apperror.WithContext("usage: swap <amount of "+s.tokenIn.Symbol()+">")))
	}
	s.done(domain.StepValidate, amountArg)

	// 2. Resolve identity
	s.begin(domain.StepIdentity)
	owner := s.wallet.Address()
	s.done(domain.StepIdentity, owner.Hex())

	// 3. Parse amount
	s.begin(domain.StepParse)
	amountIn, err := asset.ParseString(s.tokenIn.Asset(), amountArg)
	if err != nil {
		return nil, s.fail(domain.StepParse, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithCause(err),
			apperror.WithContext(amountArg)))
	}
	if !amountIn.IsPositive() {
		return nil, s.fail(domain.StepParse, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext("amount must be greater than zero")))
	}
	span.SetAttributes(attribute.String("amount_in", amountIn.Raw().String()))
	s.done(domain.StepParse, amountIn.String())

	// 4. Balance check
	s.begin(domain.StepBalance)
	ok, balance, err := s.tokenIn.WalletHas(ctx, s.wallet, amountIn)
	if err != nil {
		return nil, s.fail(domain.StepBalance, apperror.Wrap(err, apperror.CodeContractCallFailed, "balanceOf "+s.tokenIn.Symbol()))
	}
	if !ok {
		return nil, s.fail(domain.StepBalance, apperror.New(apperror.CodeInsufficientTokenBalance,
			apperror.WithContext(fmt.Sprintf("required %s, have %s", amountIn.String(), balance.String()))))
	}
	s.done(domain.StepBalance, balance.String())

	// 5. Request route
	s.begin(domain.StepRoute)
	route, err := s.requestRoute(ctx, owner, amountIn)
	if err != nil {
		return nil, s.fail(domain.StepRoute, err)
	}

	// 6. Log intended swap
	summary := domain.Summary(amountIn, route.Quote)
	s.logger.Info(ctx, summary,
		"source", route.Source,
		"fee_tier", route.FeeTier,
		"price", asset.NewExecutionPrice(amountIn, route.Quote).String(),
		"estimated_fee_eth", estimatedFee(route).TotalEther().String(),
	)
	s.done(domain.StepRoute, summary)

	// 7. Check approval
	if err := s.ensureAllowance(ctx, owner, amountIn); err != nil {
		return nil, err
	}

	// 8. Build transaction
	s.begin(domain.StepBuildTx)
	tx := bcdomain.TxRequest{
		From:     owner,
		To:       s.config.Router,
		Data:     route.MethodParameters.Calldata,
		Value:    route.ValueOrZero(),
		GasPrice: route.GasPriceWei,
		GasLimit: s.config.GasLimit,
	}
	s.done(domain.StepBuildTx, fmt.Sprintf("gas limit %d", tx.GasLimit))

	// 9. Pre-flight gas check
	s.begin(domain.StepGasCheck)
	native, err := s.wallet.Balance(ctx)
	if err != nil {
		return nil, s.fail(domain.StepGasCheck, apperror.Wrap(err, apperror.CodeEthereumRPCError, "native balance"))
	}
	if !domain.HasGasFor(native, tx.GasLimit) {
		return nil, s.fail(domain.StepGasCheck, apperror.New(apperror.CodeInsufficientGasBalance,
			apperror.WithContext(fmt.Sprintf("gas limit %d, balance %s wei", tx.GasLimit, native.String()))))
	}
	s.done(domain.StepGasCheck, native.String()+" wei")

	// 10. Submit
	s.begin(domain.StepSubmit)
	hash, err := s.wallet.SendTransaction(ctx, tx)
	if err != nil {
		return nil, s.fail(domain.StepSubmit, apperror.Wrap(err, apperror.CodeTransactionFailed, "submit swap"))
	}
	s.report(domain.Event{Step: domain.StepSubmit, Status: domain.StatusDone, Detail: hash.Hex(), TxHash: hash})
	s.logger.Info(ctx, "submitted swap transaction", "hash", hash.Hex())
	span.SetAttributes(attribute.String("tx_hash", hash.Hex()))

	return &Submission{Hash: hash, Summary: summary, Route: route, swapper: s}, nil
}

func (s *Swapper) requestRoute(ctx context.Context, owner common.Address, amountIn asset.Amount) (*routingdomain.Route, error) {
	req := routingdomain.SwapRequest{
		AmountIn:  amountIn,
		TokenOut:  s.tokenOut.Asset(),
		TradeType: routingdomain.ExactInput,
		Options: routingdomain.SwapOptions{
			Recipient:         owner,
			SlippageTolerance: s.config.SlippageTolerance,
			Deadline:          s.config.Deadline,
		},
	}

	start := s.now()
	route, err := s.router.Route(ctx, req)
	s.metrics.routeLatency.Record(ctx, float64(s.now().Sub(start).Milliseconds()))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeRoutingAPIError, "route request")
	}
	if route == nil {
		return nil, apperror.New(apperror.CodeNoRoute,
			apperror.WithContext(fmt.Sprintf("%s to %s", amountIn.String(), s.tokenOut.Symbol())))
	}
	return route, nil
}

// estimatedFee prices the route's gas estimate at its suggested gas price.
func estimatedFee(route *routingdomain.Route) *bcdomain.GasEstimate {
	price := route.GasPriceWei
	if price == nil {
		price = new(big.Int)
	}
	return bcdomain.NewGasEstimate(route.EstimatedGasUsed, bcdomain.NewGasPrice(price))
}

// ensureAllowance approves the router when the allowance does not cover
// amountIn and waits for the approval to reach the configured depth.
func (s *Swapper) ensureAllowance(ctx context.Context, owner common.Address, amountIn asset.Amount) error {
	s.begin(domain.StepAllowance)
	if s.config.Router == (common.Address{}) {
		return s.fail(domain.StepAllowance, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("swap router address is not set")))
	}

	contract := s.tokenIn.Contract()
	allowance, err := contract.Allowance(ctx, owner, s.config.Router)
	if err != nil {
		return s.fail(domain.StepAllowance, apperror.Wrap(err, apperror.CodeContractCallFailed, "allowance "+s.tokenIn.Symbol()))
	}
	s.done(domain.StepAllowance, asset.NewAmount(s.tokenIn.Asset(), allowance).String())

	if !domain.NeedsApproval(allowance, amountIn.Raw()) {
		s.logger.Info(ctx, fmt.Sprintf("Sufficient %s allowance, no need for approval", s.tokenIn.Symbol()))
		s.report(domain.Event{Step: domain.StepApprove, Status: domain.StatusSkipped, Detail: "allowance covers amount"})
		return nil
	}

	s.begin(domain.StepApprove)
	s.logger.Info(ctx, fmt.Sprintf("Requesting %s approval", s.tokenIn.Symbol()))
	approval := domain.ApprovalAmount(amountIn.Raw())
	hash, err := contract.Approve(ctx, s.wallet, s.config.Router, approval)
	if err != nil {
		return s.fail(domain.StepApprove, apperror.Wrap(err, apperror.CodeTransactionFailed, "submit approval"))
	}
	s.metrics.approvals.Add(ctx, 1)
	s.logger.Info(ctx, "submitted approval transaction",
		"hash", hash.Hex(),
		"spender", s.config.Router.Hex(),
		"amount", approval.String(),
	)
	s.report(domain.Event{Step: domain.StepApprove, Status: domain.StatusRunning,
		Detail: fmt.Sprintf("waiting for %d confirmations", s.config.ApprovalConfirmations), TxHash: hash})

	receipt, err := s.wallet.WaitConfirmations(ctx, hash, s.config.ApprovalConfirmations)
	if err != nil {
		return s.fail(domain.StepApprove, err)
	}
	s.report(domain.Event{Step: domain.StepApprove, Status: domain.StatusDone,
		Detail: fmt.Sprintf("confirmed in block %d", receipt.BlockNumber), TxHash: hash})
	return nil
}

// Wait blocks until the swap transaction is mined and logs its hash.
func (sub *Submission) Wait(ctx context.Context) (*bcdomain.Receipt, error) {
	s := sub.swapper

	ctx, span := s.tracer.Start(ctx, "swap.wait",
		trace.WithAttributes(attribute.String("tx_hash", sub.Hash.Hex())))
	defer span.End()

	s.begin(domain.StepConfirm)
	receipt, err := s.wallet.WaitConfirmations(ctx, sub.Hash, 1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "wait failed")
		s.metrics.runs.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", string(domain.OutcomeOf(err)))))
		return nil, s.fail(domain.StepConfirm, err)
	}

	s.metrics.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(domain.OutcomeSuccess))))
	s.logger.Info(ctx, "Completed swap transaction: "+sub.Hash.Hex(),
		"block", receipt.BlockNumber,
		"gas_used", receipt.GasUsed,
	)
	s.report(domain.Event{Step: domain.StepConfirm, Status: domain.StatusDone,
		Detail: fmt.Sprintf("block %d", receipt.BlockNumber), TxHash: sub.Hash})
	return receipt, nil
}

// Detach records a run that ends at submission without waiting.
func (sub *Submission) Detach(ctx context.Context) {
	s := sub.swapper
	s.metrics.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(domain.OutcomeSubmitted))))
	s.report(domain.Event{Step: domain.StepConfirm, Status: domain.StatusSkipped, Detail: "not waiting for " + sub.Hash.Hex(), TxHash: sub.Hash})
}

func (s *Swapper) begin(step domain.Step) {
	s.report(domain.Event{Step: step, Status: domain.StatusRunning})
}

func (s *Swapper) done(step domain.Step, detail string) {
	s.report(domain.Event{Step: step, Status: domain.StatusDone, Detail: detail})
}

func (s *Swapper) fail(step domain.Step, err error) error {
	s.report(domain.Event{Step: step, Status: domain.StatusFailed, Detail: err.Error(), Err: err})
	return err
}

func (s *Swapper) report(event domain.Event) {
	if s.reporter == nil {
		return
	}
	event.Timestamp = s.now()
	s.reporter.Report(event)
}
