package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/uniswap-swapper/business/blockchain/app"
	"github.com/fd1az/uniswap-swapper/business/blockchain/domain"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/logger"
	"github.com/fd1az/uniswap-swapper/internal/ratelimit"
)

var _ app.Wallet = (*Wallet)(nil)

// ChainClient is the subset of *ethclient.Client the wallet needs.
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// WalletConfig holds signing configuration.
type WalletConfig struct {
	ChainID      *big.Int
	PollInterval time.Duration
}

type walletMetrics struct {
	txSent     metric.Int64Counter
	txReverted metric.Int64Counter
	waitTime   metric.Float64Histogram
}

// Wallet signs legacy transactions with a local ECDSA key.
type Wallet struct {
	client  ChainClient
	oracle  app.GasOracle
	key     *ecdsa.PrivateKey
	address common.Address
	signer  types.Signer
	config  WalletConfig
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *walletMetrics
}

// NewWallet parses the hex private key (with or without 0x) and binds it to
// the client.
func NewWallet(client ChainClient, oracle app.GasOracle, hexKey string, cfg WalletConfig, log logger.LoggerInterface) (*Wallet, error) {
	if hexKey == "" {
		return nil, apperror.New(apperror.CodeInvalidPrivateKey,
			apperror.WithContext("wallet private key is not set"))
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		// The parse error never echoes the key.
		return nil, apperror.New(apperror.CodeInvalidPrivateKey,
			apperror.WithContext("wallet private key is not a valid secp256k1 key"))
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}

	w := &Wallet{
		client:  client,
		oracle:  oracle,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		signer:  types.LatestSignerForChainID(cfg.ChainID),
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	if err := w.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return w, nil
}

func (w *Wallet) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	w.metrics = &walletMetrics{}

	w.metrics.txSent, err = meter.Int64Counter(
		"wallet_transactions_sent_total",
		metric.WithDescription("Transactions signed and submitted"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return err
	}

	w.metrics.txReverted, err = meter.Int64Counter(
		"wallet_transactions_reverted_total",
		metric.WithDescription("Transactions mined with a failed status"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return err
	}

	w.metrics.waitTime, err = meter.Float64Histogram(
		"wallet_confirmation_wait_seconds",
		metric.WithDescription("Time spent waiting for confirmations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Address returns the signing account.
func (w *Wallet) Address() common.Address {
	return w.address
}

// VerifyChain checks the node serves the configured chain.
func (w *Wallet) VerifyChain(ctx context.Context) error {
	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		return apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to read chain id"))
	}
	if chainID.Cmp(w.config.ChainID) != 0 {
		return apperror.New(apperror.CodeChainIDMismatch,
			apperror.WithContext(fmt.Sprintf("node chain id %s, configured %s", chainID, w.config.ChainID)))
	}
	return nil
}

// Balance returns the native balance at the latest block.
func (w *Wallet) Balance(ctx context.Context) (*big.Int, error) {
	balance, err := w.client.BalanceAt(ctx, w.address, nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to read native balance"))
	}
	return balance, nil
}

// SendTransaction fills nonce, gas price and gas limit where unset, signs
// and broadcasts req.
func (w *Wallet) SendTransaction(ctx context.Context, req domain.TxRequest) (common.Hash, error) {
	ctx, span := w.tracer.Start(ctx, "wallet.send_transaction",
		trace.WithAttributes(
			attribute.String("to", req.To.Hex()),
			attribute.Int("data_len", len(req.Data)),
		),
	)
	defer span.End()

	fail := func(err error) (common.Hash, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return common.Hash{}, err
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return fail(apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to read pending nonce")))
	}

	gasPrice := req.GasPrice
	if gasPrice == nil {
		price, err := w.oracle.GetGasPrice(ctx)
		if err != nil {
			return fail(err)
		}
		gasPrice = price.Wei
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		to := req.To
		gasLimit, err = w.oracle.EstimateGas(ctx, ethereum.CallMsg{
			From:  w.address,
			To:    &to,
			Value: value,
			Data:  req.Data,
		})
		if err != nil {
			return fail(err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &req.To,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, w.signer, w.key)
	if err != nil {
		return fail(apperror.New(apperror.CodeTransactionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to sign transaction")))
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return fail(apperror.New(apperror.CodeTransactionFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("failed to submit transaction to %s", req.To.Hex()))))
	}

	w.metrics.txSent.Add(ctx, 1)

	span.SetAttributes(
		attribute.String("tx_hash", signed.Hash().Hex()),
		attribute.Int64("nonce", int64(nonce)),
		attribute.Int64("gas_limit", int64(gasLimit)),
		attribute.String("gas_price", gasPrice.String()),
	)
	span.SetStatus(codes.Ok, "submitted")

	w.logger.Debug(ctx, "transaction submitted",
		"hash", signed.Hash().Hex(),
		"to", req.To.Hex(),
		"nonce", nonce,
		"gas_limit", gasLimit,
		"gas_price", gasPrice.String(),
	)

	return signed.Hash(), nil
}

// WaitConfirmations polls for the receipt, then for the chain head to reach
// the requested depth. A failed receipt status is returned as
// TRANSACTION_REVERTED.
func (w *Wallet) WaitConfirmations(ctx context.Context, hash common.Hash, confirmations uint64) (*domain.Receipt, error) {
	ctx, span := w.tracer.Start(ctx, "wallet.wait_confirmations",
		trace.WithAttributes(
			attribute.String("tx_hash", hash.Hex()),
			attribute.Int64("confirmations", int64(confirmations)),
		),
	)
	defer span.End()

	if confirmations == 0 {
		confirmations = 1
	}

	start := time.Now()
	defer func() {
		w.metrics.waitTime.Record(ctx, time.Since(start).Seconds())
	}()

	limiter := ratelimit.Every(w.config.PollInterval)

	var receipt *types.Receipt
	for {
		if err := limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return nil, apperror.New(apperror.CodeServiceTimeout,
				apperror.WithCause(err),
				apperror.WithContext("stopped waiting for "+hash.Hex()))
		}

		if receipt == nil {
			r, err := w.client.TransactionReceipt(ctx, hash)
			if errors.Is(err, ethereum.NotFound) {
				continue
			}
			if err != nil {
				span.RecordError(err)
				return nil, apperror.New(apperror.CodeEthereumRPCError,
					apperror.WithCause(err),
					apperror.WithContext("failed to read receipt for "+hash.Hex()))
			}
			receipt = r

			if receipt.Status == types.ReceiptStatusFailed {
				w.metrics.txReverted.Add(ctx, 1)
				span.SetStatus(codes.Error, "reverted")
				return toReceipt(receipt), apperror.New(apperror.CodeTransactionReverted,
					apperror.WithContext(fmt.Sprintf("%s in block %d", hash.Hex(), receipt.BlockNumber.Uint64())))
			}
		}

		head, err := w.client.BlockNumber(ctx)
		if err != nil {
			span.RecordError(err)
			return nil, apperror.New(apperror.CodeEthereumRPCError,
				apperror.WithCause(err),
				apperror.WithContext("failed to read block number"))
		}

		got := domain.Confirmations(receipt.BlockNumber.Uint64(), head)
		w.logger.Debug(ctx, "waiting for confirmations",
			"hash", hash.Hex(),
			"have", got,
			"want", confirmations,
		)
		if got >= confirmations {
			span.SetStatus(codes.Ok, "confirmed")
			return toReceipt(receipt), nil
		}
	}
}

func toReceipt(r *types.Receipt) *domain.Receipt {
	return &domain.Receipt{
		TxHash:      r.TxHash,
		BlockNumber: r.BlockNumber.Uint64(),
		GasUsed:     r.GasUsed,
		Success:     r.Status == types.ReceiptStatusSuccessful,
	}
}
