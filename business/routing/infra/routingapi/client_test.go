package routingapi

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/uniswap-swapper/business/routing/domain"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
	"github.com/fd1az/uniswap-swapper/internal/logger"
)

const quoteBody = `{
	"quote": "2500000000000000000000",
	"quoteDecimals": "2500",
	"gasUseEstimate": "113000",
	"gasPriceWei": "21000000000",
	"methodParameters": {
		"calldata": "0x5ae401dc00",
		"value": "0x00",
		"to": "0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k", RequestsPerMinute: 600}, logger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func request(t *testing.T) domain.SwapRequest {
	t.Helper()
	amount, _ := asset.ParseString(asset.WETH, "10")
	return domain.SwapRequest{
		AmountIn:  amount,
		TokenOut:  asset.UNI,
		TradeType: domain.ExactInput,
		Options: domain.SwapOptions{
			Recipient:         common.HexToAddress("0x00000000000000000000000000000000000000aa"),
			SlippageTolerance: domain.NewPercent(5, 100),
			Deadline:          big.NewInt(1700001800),
		},
	}
}

func TestClient_Route(t *testing.T) {
	var query url.Values
	var apiKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		apiKey = r.Header.Get("x-api-key")
		w.Write([]byte(quoteBody))
	})

	route, err := c.Route(context.Background(), request(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"tokenInAddress":    asset.AddrWETHEthereum.Hex(),
		"tokenInChainId":    "1",
		"tokenOutAddress":   asset.AddrUNIEthereum.Hex(),
		"tokenOutChainId":   "1",
		"amount":            "10000000000000000000",
		"type":              "exactIn",
		"recipient":         common.HexToAddress("0x00000000000000000000000000000000000000aa").Hex(),
		"slippageTolerance": "5",
		"deadline":          "1800",
	}
	for k, v := range want {
		if got := query.Get(k); got != v {
			t.Errorf("query %s: expected %q, got %q", k, v, got)
		}
	}
	if apiKey != "k" {
		t.Errorf("expected api key header")
	}

	if route.Quote.StringFixed(2) != "2500.00 UNI" {
		t.Errorf("unexpected quote %s", route.Quote.StringFixed(2))
	}
	if route.GasPriceWei.Int64() != 21_000_000_000 || route.EstimatedGasUsed != 113000 {
		t.Errorf("unexpected gas fields")
	}
	if route.ValueOrZero().Sign() != 0 || len(route.MethodParameters.Calldata) != 5 {
		t.Errorf("unexpected method parameters %+v", route.MethodParameters)
	}
	if route.Source != SourceAPI {
		t.Errorf("unexpected source %s", route.Source)
	}
}

func TestClient_NoRoute(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "not_found", status: http.StatusNotFound, body: `{}`},
		{name: "error_code", status: http.StatusBadRequest, body: `{"errorCode":"NO_ROUTE","detail":"No route found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			route, err := c.Route(context.Background(), request(t))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if route != nil {
				t.Errorf("expected nil route")
			}
		})
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apperror.Code
	}{
		{name: "bad_request", status: http.StatusBadRequest, body: `{"errorCode":"VALIDATION_ERROR"}`, want: apperror.CodeRoutingAPIError},
		{name: "server_error", status: http.StatusBadGateway, body: `upstream`, want: apperror.CodeRoutingAPIError},
		{name: "missing_params", status: http.StatusOK, body: `{"quote":"1","gasPriceWei":"1","gasUseEstimate":"1"}`, want: apperror.CodeInvalidRoute},
		{name: "bad_calldata", status: http.StatusOK, body: `{"quote":"1","gasPriceWei":"1","gasUseEstimate":"1","methodParameters":{"calldata":"zz","value":"0x0","to":"0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"}}`, want: apperror.CodeInvalidRoute},
		{name: "negative_quote", status: http.StatusOK, body: `{"quote":"-5","gasPriceWei":"1","gasUseEstimate":"1","methodParameters":{"calldata":"0x","value":"0x0","to":"0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"}}`, want: apperror.CodeInvalidRoute},
		{name: "negative_gas_price", status: http.StatusOK, body: `{"quote":"5","gasPriceWei":"-1","gasUseEstimate":"1","methodParameters":{"calldata":"0x","value":"0x0","to":"0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"}}`, want: apperror.CodeInvalidRoute},
		{name: "negative_value", status: http.StatusOK, body: `{"quote":"5","gasPriceWei":"1","gasUseEstimate":"1","methodParameters":{"calldata":"0x","value":"0x-1","to":"0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"}}`, want: apperror.CodeInvalidRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Route(context.Background(), request(t))
			if !apperror.HasCode(err, tt.want) {
				t.Errorf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestParseHexBig(t *testing.T) {
	tests := map[string]int64{"": 0, "0x": 0, "0x00": 0, "0x0de0b6b3a7640000": 1e18}
	for in, want := range tests {
		got, err := parseHexBig(in)
		if err != nil || got.Int64() != want {
			t.Errorf("parseHexBig(%q) = %v, %v", in, got, err)
		}
	}

	for _, in := range []string{"0x-1", "0xzz"} {
		if _, err := parseHexBig(in); err == nil {
			t.Errorf("parseHexBig(%q) should fail", in)
		}
	}
}
