// Package erc20 binds the ERC-20 token interface over a go-ethereum backend.
package erc20

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	bcdomain "github.com/fd1az/uniswap-swapper/business/blockchain/domain"
	"github.com/fd1az/uniswap-swapper/business/token/app"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
)

const tracerName = "erc20"

var parsedABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(ABI))
	if err != nil {
		panic(fmt.Sprintf("erc20: parse abi: %v", err))
	}
	return parsed
}

var _ app.ERC20 = (*Contract)(nil)

// Caller executes read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contract is an ERC-20 token handle.
type Contract struct {
	address common.Address
	caller  Caller
	tracer  trace.Tracer
}

// New binds the token at address to caller.
func New(address common.Address, caller Caller) *Contract {
	return &Contract{
		address: address,
		caller:  caller,
		tracer:  otel.Tracer(tracerName),
	}
}

// Address returns the token contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// BalanceOf returns owner's balance in smallest units.
func (c *Contract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return c.callUint256(ctx, "balanceOf", owner)
}

// Allowance returns how much spender may move on owner's behalf.
func (c *Contract) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return c.callUint256(ctx, "allowance", owner, spender)
}

// Approve submits approve(spender, amount) signed by signer.
func (c *Contract) Approve(ctx context.Context, signer app.Signer, spender common.Address, amount *big.Int) (common.Hash, error) {
	ctx, span := c.tracer.Start(ctx, "erc20.approve",
		trace.WithAttributes(
			attribute.String("token", c.address.Hex()),
			attribute.String("spender", spender.Hex()),
			attribute.String("amount", amount.String()),
		),
	)
	defer span.End()

	data, err := PackApprove(spender, amount)
	if err != nil {
		span.RecordError(err)
		return common.Hash{}, apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("failed to encode approve"))
	}

	hash, err := signer.SendTransaction(ctx, bcdomain.TxRequest{
		From: signer.Address(),
		To:   c.address,
		Data: data,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "approve failed")
		return common.Hash{}, err
	}

	span.SetAttributes(attribute.String("tx_hash", hash.Hex()))
	span.SetStatus(codes.Ok, "submitted")
	return hash, nil
}

// PackApprove encodes approve(spender, amount) calldata.
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return parsedABI.Pack("approve", spender, amount)
}

func (c *Contract) callUint256(ctx context.Context, method string, args ...any) (*big.Int, error) {
	ctx, span := c.tracer.Start(ctx, "erc20."+method,
		trace.WithAttributes(attribute.String("token", c.address.Hex())),
	)
	defer span.End()

	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("failed to encode "+method))
	}

	out, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "call failed")
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s on %s", method, c.address.Hex())))
	}

	values, err := parsedABI.Unpack(method, out)
	if err != nil || len(values) != 1 {
		if err == nil {
			err = fmt.Errorf("expected 1 output, got %d", len(values))
		}
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("decode %s from %s", method, c.address.Hex())))
	}

	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext(fmt.Sprintf("unexpected %s output type %T", method, values[0])))
	}

	span.SetStatus(codes.Ok, "ok")
	return v, nil
}
