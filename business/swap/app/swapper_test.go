package app_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bcdomain "github.com/fd1az/uniswap-swapper/business/blockchain/domain"
	routingdomain "github.com/fd1az/uniswap-swapper/business/routing/domain"
	"github.com/fd1az/uniswap-swapper/business/swap/app"
	"github.com/fd1az/uniswap-swapper/business/swap/domain"
	tokenapp "github.com/fd1az/uniswap-swapper/business/token/app"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
	"github.com/fd1az/uniswap-swapper/internal/logger"
)

var (
	walletAddr   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	routerAddr   = common.HexToAddress("0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45")
	approvalHash = common.HexToHash("0x01")
	swapHash     = common.HexToHash("0x02")
)

// journal records every collaborator call in order.
type journal struct {
	calls []string
}

func (j *journal) add(call string) {
	j.calls = append(j.calls, call)
}

func (j *journal) count(call string) int {
	n := 0
	for _, c := range j.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeERC20 struct {
	j         *journal
	balance   *big.Int
	allowance *big.Int
	approved  *big.Int
}

func (f *fakeERC20) Address() common.Address { return asset.AddrWETHEthereum }

func (f *fakeERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	f.j.add("balanceOf")
	return f.balance, nil
}

func (f *fakeERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	f.j.add("allowance")
	return f.allowance, nil
}

func (f *fakeERC20) Approve(ctx context.Context, signer tokenapp.Signer, spender common.Address, amount *big.Int) (common.Hash, error) {
	f.j.add("approve")
	f.approved = amount
	return approvalHash, nil
}

type fakeWallet struct {
	j             *journal
	native        *big.Int
	sent          []bcdomain.TxRequest
	confirmations map[common.Hash]uint64
	revert        map[common.Hash]bool
}

func (f *fakeWallet) Address() common.Address { return walletAddr }

func (f *fakeWallet) Balance(ctx context.Context) (*big.Int, error) {
	f.j.add("balance")
	return f.native, nil
}

func (f *fakeWallet) SendTransaction(ctx context.Context, req bcdomain.TxRequest) (common.Hash, error) {
	f.j.add("send")
	f.sent = append(f.sent, req)
	return swapHash, nil
}

func (f *fakeWallet) WaitConfirmations(ctx context.Context, hash common.Hash, confirmations uint64) (*bcdomain.Receipt, error) {
	f.j.add("wait:" + hash.Hex()[len(hash.Hex())-2:])
	f.confirmations[hash] = confirmations
	if f.revert[hash] {
		return &bcdomain.Receipt{TxHash: hash, BlockNumber: 100}, apperror.New(apperror.CodeTransactionReverted)
	}
	return &bcdomain.Receipt{TxHash: hash, BlockNumber: 100, GasUsed: 120000, Success: true}, nil
}

type fakeRouter struct {
	j     *journal
	route *routingdomain.Route
	err   error
	req   routingdomain.SwapRequest
}

func (f *fakeRouter) Route(ctx context.Context, req routingdomain.SwapRequest) (*routingdomain.Route, error) {
	f.j.add("route")
	f.req = req
	return f.route, f.err
}

type recordingReporter struct {
	events []domain.Event
}

func (r *recordingReporter) Start(ctx context.Context) error { return nil }
func (r *recordingReporter) Report(e domain.Event) { r.events = append(r.events, e) }
func (r *recordingReporter) Stop() error { return nil }

type fixture struct {
	j        *journal
	token    *fakeERC20
	wallet   *fakeWallet
	router   *fakeRouter
	reporter *recordingReporter
	cfg      app.Config
}

func weth(t *testing.T, s string) *big.Int {
	t.Helper()
	a, err := asset.ParseString(asset.WETH, s)
	require.NoError(t, err)
	return a.Raw()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	j := &journal{}

	quote, err := asset.ParseString(asset.UNI, "412.25")
	require.NoError(t, err)

	return &fixture{
		j:     j,
		token: &fakeERC20{j: j, balance: weth(t, "2"), allowance: big.NewInt(0)},
		wallet: &fakeWallet{
			j:             j,
			native:        big.NewInt(1e18),
			confirmations: make(map[common.Hash]uint64),
			revert:        make(map[common.Hash]bool),
		},
		router: &fakeRouter{j: j, route: &routingdomain.Route{
			Quote:            quote,
			GasPriceWei:      big.NewInt(30_000_000_000),
			EstimatedGasUsed: 113000,
			MethodParameters: routingdomain.MethodParameters{
				Calldata: []byte{0x5a, 0xe4, 0x01, 0xdc},
				To:       routerAddr,
			},
			FeeTier: 3000,
			Source:  "test",
		}},
		reporter: &recordingReporter{},
		cfg: app.Config{
			Router:                routerAddr,
			SlippageTolerance:     routingdomain.NewPercent(5, 100),
			Deadline:              big.NewInt(1_700_001_800),
			GasLimit:              200000,
			ApprovalConfirmations: 3,
		},
	}
}

func (f *fixture) swapper(t *testing.T) *app.Swapper {
	t.Helper()
	bind := func(common.Address) tokenapp.ERC20 { return f.token }
	tokenIn := tokenapp.NewToken(asset.WETH, bind)
	tokenOut := tokenapp.NewToken(asset.UNI, bind)

	s, err := app.NewSwapper(f.wallet, tokenIn, tokenOut, f.router, f.reporter, f.cfg, logger.NewNop())
	require.NoError(t, err)
	return s
}

func TestSwapper_ApprovesThenSwaps(t *testing.T) {
	f := newFixture(t)

	sub, err := f.swapper(t).Run(context.Background(), "1.5")
	require.NoError(t, err)

	assert.Equal(t, []string{"balanceOf", "route", "allowance", "approve", "wait:01", "balance", "send"}, f.j.calls)
	assert.Equal(t, uint64(3), f.wallet.confirmations[approvalHash])
	assert.Equal(t, domain.ApprovalAmount(weth(t, "1.5")), f.token.approved)

	require.Len(t, f.wallet.sent, 1)
	tx := f.wallet.sent[0]
	assert.Equal(t, routerAddr, tx.To)
	assert.Equal(t, walletAddr, tx.From)
	assert.Equal(t, uint64(200000), tx.GasLimit)
	assert.Equal(t, big.NewInt(30_000_000_000), tx.GasPrice)
	assert.Equal(t, 0, tx.Value.Sign())
	assert.Equal(t, []byte{0x5a, 0xe4, 0x01, 0xdc}, tx.Data)

	assert.Equal(t, swapHash, sub.Hash)
	assert.Equal(t, "Swapping 1.5 WETH for 412.250000000000000000 UNI", sub.Summary)

	req := f.router.req
	assert.Equal(t, routingdomain.ExactInput, req.TradeType)
	assert.Equal(t, walletAddr, req.Options.Recipient)
	assert.Equal(t, f.cfg.Deadline, req.Options.Deadline)
	assert.True(t, req.TokenOut.Equals(asset.UNI))
}

func TestSwapper_SkipsApprovalWhenAllowanceCovers(t *testing.T) {
	tests := []struct {
		name      string
		allowance string
	}{
		{name: "exact", allowance: "1.5"},
		{name: "above", allowance: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.token.allowance = weth(t, tt.allowance)

			_, err := f.swapper(t).Run(context.Background(), "1.5")
			require.NoError(t, err)

			assert.Zero(t, f.j.count("approve"))
			assert.Equal(t, []string{"balanceOf", "route", "allowance", "balance", "send"}, f.j.calls)
		})
	}
}

func TestSwapper_InsufficientTokenBalance(t *testing.T) {
	f := newFixture(t)
	f.token.balance = weth(t, "0.05")

	_, err := f.swapper(t).Run(context.Background(), "0.1")
	require.Error(t, err)

	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientTokenBalance))
	assert.Contains(t, err.Error(), "required 0.1 WETH, have 0.05 WETH")
	assert.Equal(t, []string{"balanceOf"}, f.j.calls)
}

func TestSwapper_BalanceBoundary(t *testing.T) {
	f := newFixture(t)
	f.token.balance = weth(t, "1.5")
	f.token.allowance = weth(t, "1.5")

	_, err := f.swapper(t).Run(context.Background(), "1.5")
	require.NoError(t, err)
	assert.Equal(t, 1, f.j.count("send"))
}

func TestSwapper_NoRoute(t *testing.T) {
	f := newFixture(t)
	f.router.route = nil

	_, err := f.swapper(t).Run(context.Background(), "1.5")
	require.Error(t, err)

	assert.True(t, apperror.HasCode(err, apperror.CodeNoRoute))
	assert.Equal(t, []string{"balanceOf", "route"}, f.j.calls)
	assert.Empty(t, f.wallet.sent)
}

func TestSwapper_RouterError(t *testing.T) {
	f := newFixture(t)
	f.router.err = errors.New("connection refused")

	_, err := f.swapper(t).Run(context.Background(), "1.5")
	require.Error(t, err)

	assert.True(t, apperror.HasCode(err, apperror.CodeRoutingAPIError))
	assert.Zero(t, f.j.count("allowance"))
}

func TestSwapper_InsufficientGas(t *testing.T) {
	f := newFixture(t)
	f.token.allowance = weth(t, "10")
	f.wallet.native = big.NewInt(199999)

	_, err := f.swapper(t).Run(context.Background(), "1.5")
	require.Error(t, err)

	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientGasBalance))
	assert.Zero(t, f.j.count("send"))
}

func TestSwapper_GasCheckIgnoresPrice(t *testing.T) {
	f := newFixture(t)
	f.token.allowance = weth(t, "10")
	f.wallet.native = big.NewInt(200000)
	f.router.route.GasPriceWei = big.NewInt(500_000_000_000)

	_, err := f.swapper(t).Run(context.Background(), "1.5")
	require.NoError(t, err)
	assert.Equal(t, 1, f.j.count("send"))
}

func TestSwapper_ApprovalReverted(t *testing.T) {
	f := newFixture(t)
	f.wallet.revert[approvalHash] = true

	_, err := f.swapper(t).Run(context.Background(), "1.5")
	require.Error(t, err)

	assert.True(t, apperror.HasCode(err, apperror.CodeTransactionReverted))
	assert.Zero(t, f.j.count("send"))
}

func TestSwapper_MissingRouterAddress(t *testing.T) {
	f := newFixture(t)
	f.cfg.Router = common.Address{}

	_, err := f.swapper(t).Run(context.Background(), "1.5")
	require.Error(t, err)

	assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError))
	assert.Zero(t, f.j.count("allowance"))
}

func TestSwapper_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   apperror.Code
	}{
		{name: "empty", amount: "", want: apperror.CodeMissingAmount},
		{name: "blank", amount: "   ", want: apperror.CodeMissingAmount},
		{name: "garbage", amount: "one", want: apperror.CodeInvalidAmount},
		{name: "negative", amount: "-1", want: apperror.CodeInvalidAmount},
		{name: "zero", amount: "0", want: apperror.CodeInvalidAmount},
		{name: "too_precise", amount: "0.0000000000000000001", want: apperror.CodeInvalidAmount},
		{name: "exponent", amount: "1e3", want: apperror.CodeInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.swapper(t).Run(context.Background(), tt.amount)
			require.Error(t, err)

			assert.True(t, apperror.HasCode(err, tt.want), "got %v", err)
			assert.Empty(t, f.j.calls)
		})
	}
}

func TestSubmission_Wait(t *testing.T) {
	f := newFixture(t)
	f.token.allowance = weth(t, "10")

	sub, err := f.swapper(t).Run(context.Background(), "1.5")
	require.NoError(t, err)

	receipt, err := sub.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, swapHash, receipt.TxHash)
	assert.Equal(t, uint64(1), f.wallet.confirmations[swapHash])

	last := f.reporter.events[len(f.reporter.events)-1]
	assert.Equal(t, domain.StepConfirm, last.Step)
	assert.Equal(t, domain.StatusDone, last.Status)
}

func TestSubmission_WaitReverted(t *testing.T) {
	f := newFixture(t)
	f.token.allowance = weth(t, "10")
	f.wallet.revert[swapHash] = true

	sub, err := f.swapper(t).Run(context.Background(), "1.5")
	require.NoError(t, err)

	_, err = sub.Wait(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeTransactionReverted))
}

func TestSwapper_ReportsSteps(t *testing.T) {
	f := newFixture(t)
	f.token.allowance = weth(t, "10")

	_, err := f.swapper(t).Run(context.Background(), "1.5")
	require.NoError(t, err)

	final := map[domain.Step]domain.Status{}
	for _, e := range f.reporter.events {
		final[e.Step] = e.Status
	}

	assert.Equal(t, domain.StatusDone, final[domain.StepBalance])
	assert.Equal(t, domain.StatusSkipped, final[domain.StepApprove])
	assert.Equal(t, domain.StatusDone, final[domain.StepSubmit])
	_, waited := final[domain.StepConfirm]
	assert.False(t, waited)
}
