package aave

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"risk_checker/internal/app/port"
	"risk_checker/internal/infrastructure/configloader"
	"risk_checker/internal/pkg/metrics"
)

// rayScale is the protocol's fixed-point scale for interest rates.
var rayScale = decimal.New(1, 27)

// PoolProvider implements port.ReserveDataProvider against an Aave v3 pool
// deployment over batched eth_call requests.
type PoolProvider struct {
	ethClient *ethclient.Client
	rpcClient *rpc.Client

	pool         common.Address
	oracle       common.Address
	dataProvider common.Address

	baseCurrencyUnit decimal.Decimal

	limiter *rate.Limiter
	cache   *gocache.Cache

	callTimeout          time.Duration
	maxCallsPerBatch     int
	maxConcurrentBatches int

	log *zap.Logger
}

// NewPoolProvider dials the first reachable RPC endpoint, resolves the oracle
// and data provider through the pool's addresses provider and reads the
// oracle's base currency unit once. Everything resolved here is immutable for
// the deployment's lifetime.
func NewPoolProvider(cfg *configloader.Config, log *zap.Logger) (*PoolProvider, error) {
	initParsedABIs()

	if !common.IsHexAddress(cfg.Network.PoolAddress) {
		return nil, fmt.Errorf("invalid pool address %q", cfg.Network.PoolAddress)
	}

	connectTimeout := time.Duration(cfg.RPCClient.ConnectTimeoutSeconds) * time.Second
	rpcURLs := append([]string{cfg.Network.RPCURL}, cfg.Network.FallbackRPCURLs...)

	var (
		ethClient *ethclient.Client
		lastErr   error
	)
	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()
		if err == nil {
			ethClient = client
			break
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	if ethClient == nil {
		return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", cfg.Network.Name, lastErr)
	}

	p := &PoolProvider{
		ethClient:            ethClient,
		rpcClient:            ethClient.Client(),
		pool:                 common.HexToAddress(cfg.Network.PoolAddress),
		limiter:              rate.NewLimiter(rate.Limit(cfg.RPCClient.RateLimit), cfg.RPCClient.BurstLimit),
		cache:                gocache.New(time.Duration(cfg.Cache.TTLSeconds)*time.Second, time.Duration(cfg.Cache.CleanupIntervalSeconds)*time.Second),
		callTimeout:          time.Duration(cfg.RPCClient.CallTimeoutSeconds) * time.Second,
		maxCallsPerBatch:     cfg.RPCClient.MaxCallsPerBatch,
		maxConcurrentBatches: cfg.RPCClient.MaxConcurrentBatches,
		log:                  log.Named("aave_provider"),
	}

	if err := p.resolveAddresses(); err != nil {
		return nil, err
	}

	p.log.Info("pool provider initialized",
		zap.String("pool", p.pool.Hex()),
		zap.String("oracle", p.oracle.Hex()),
		zap.String("dataProvider", p.dataProvider.Hex()),
		zap.String("baseCurrencyUnit", p.baseCurrencyUnit.String()))

	return p, nil
}

func (p *PoolProvider) resolveAddresses() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.callTimeout)
	defer cancel()

	var addressesProvider common.Address
	if err := p.callSingle(ctx, p.pool, &poolABI, "ADDRESSES_PROVIDER", &addressesProvider); err != nil {
		return fmt.Errorf("failed to resolve addresses provider: %w", err)
	}
	if err := p.callSingle(ctx, addressesProvider, &providerABI, "getPriceOracle", &p.oracle); err != nil {
		return fmt.Errorf("failed to resolve price oracle: %w", err)
	}
	if err := p.callSingle(ctx, addressesProvider, &providerABI, "getPoolDataProvider", &p.dataProvider); err != nil {
		return fmt.Errorf("failed to resolve protocol data provider: %w", err)
	}

	var unit *big.Int
	if err := p.callSingle(ctx, p.oracle, &oracleABI, "BASE_CURRENCY_UNIT", &unit); err != nil {
		return fmt.Errorf("failed to read base currency unit: %w", err)
	}
	if unit == nil || unit.Sign() <= 0 {
		return fmt.Errorf("oracle returned non-positive base currency unit")
	}
	p.baseCurrencyUnit = decimal.NewFromBigInt(unit, 0)

	return nil
}

// callSingle performs one eth_call and unpacks the first output into out,
// which must be a pointer of the matching Go type.
func (p *PoolProvider) callSingle(ctx context.Context, to common.Address, contract *abi.ABI, method string, out interface{}) error {
	data, err := contract.Pack(method)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", method, err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	raw, err := p.ethClient.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("%s call failed: %w", method, err)
	}

	unpacked, err := contract.Unpack(method, raw)
	if err != nil {
		return fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(unpacked) == 0 {
		return fmt.Errorf("%s returned no data", method)
	}

	switch dst := out.(type) {
	case *common.Address:
		v, ok := unpacked[0].(common.Address)
		if !ok {
			return fmt.Errorf("%s: expected address, got %T", method, unpacked[0])
		}
		*dst = v
	case **big.Int:
		v, ok := unpacked[0].(*big.Int)
		if !ok {
			return fmt.Errorf("%s: expected *big.Int, got %T", method, unpacked[0])
		}
		*dst = v
	default:
		return fmt.Errorf("%s: unsupported result destination %T", method, out)
	}
	return nil
}

// viewCall describes one eth_call destined for a batch.
type viewCall struct {
	to       common.Address
	contract *abi.ABI
	method   string
	args     []interface{}
}

func (c viewCall) toBatchElem(blockTag string) (rpc.BatchElem, error) {
	data, err := c.contract.Pack(c.method, c.args...)
	if err != nil {
		return rpc.BatchElem{}, fmt.Errorf("failed to pack %s: %w", c.method, err)
	}
	return rpc.BatchElem{
		Method: "eth_call",
		Args: []interface{}{
			map[string]interface{}{
				"to":   c.to,
				"data": hexutil.Bytes(data),
			},
			blockTag,
		},
		Result: new(hexutil.Bytes),
	}, nil
}

// batchCall executes the calls as JSON-RPC batches pinned to blockTag,
// chunked by maxCallsPerBatch and bounded by maxConcurrentBatches. Results
// are returned in input order; a per-call revert surfaces as an error on the
// corresponding element, a transport failure fails the whole round.
func (p *PoolProvider) batchCall(ctx context.Context, blockTag string, calls []viewCall) ([]rpc.BatchElem, error) {
	elems := make([]rpc.BatchElem, len(calls))
	for i, call := range calls {
		elem, err := call.toBatchElem(blockTag)
		if err != nil {
			return nil, err
		}
		elems[i] = elem
	}

	g, gctx := errgroup.WithContext(ctx)
	if p.maxConcurrentBatches > 0 {
		g.SetLimit(p.maxConcurrentBatches)
	}

	for start := 0; start < len(elems); start += p.maxCallsPerBatch {
		end := start + p.maxCallsPerBatch
		if end > len(elems) {
			end = len(elems)
		}
		chunk := elems[start:end]

		g.Go(func() error {
			if err := p.limiter.Wait(gctx); err != nil {
				return err
			}

			callCtx, cancel := context.WithTimeout(gctx, p.callTimeout)
			defer cancel()

			timer := prometheus.NewTimer(metrics.RPCBatchDuration)
			err := p.rpcClient.BatchCallContext(callCtx, chunk)
			timer.ObserveDuration()
			if err != nil {
				return fmt.Errorf("RPC batch call failed: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return elems, nil
}

// unpackElem decodes one batch element's returned bytes through the given
// contract method. Empty return data is reported as an error so callers can
// decide whether the call was optional.
func unpackElem(elem rpc.BatchElem, contract *abi.ABI, method string) ([]interface{}, error) {
	if elem.Error != nil {
		return nil, elem.Error
	}
	raw, ok := elem.Result.(*hexutil.Bytes)
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s: unexpected batch result type %T", method, elem.Result)
	}
	if len(*raw) == 0 {
		return nil, fmt.Errorf("%s returned no data", method)
	}
	unpacked, err := contract.Unpack(method, *raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return unpacked, nil
}

func unpackBigInt(elem rpc.BatchElem, contract *abi.ABI, method string) (*big.Int, error) {
	unpacked, err := unpackElem(elem, contract, method)
	if err != nil {
		return nil, err
	}
	v, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: expected *big.Int, got %T", method, unpacked[0])
	}
	return v, nil
}

func unpackAddress(elem rpc.BatchElem, contract *abi.ABI, method string) (common.Address, error) {
	unpacked, err := unpackElem(elem, contract, method)
	if err != nil {
		return common.Address{}, err
	}
	v, ok := unpacked[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: expected address, got %T", method, unpacked[0])
	}
	return v, nil
}

func cacheKey(blockNumber uint64, walletAddress string) string {
	return fmt.Sprintf("state:%d:%s", blockNumber, strings.ToLower(walletAddress))
}

var _ port.ReserveDataProvider = (*PoolProvider)(nil)
