package aave

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"risk_checker/internal/app/port"
	"risk_checker/internal/domain/entity"
	"risk_checker/internal/pkg/metrics"
)

// calls issued per reserve in the configuration round and the balance round.
const (
	reserveRoundCalls = 5
	balanceRoundCalls = 6
)

// reserveRaw is the undecoded per-reserve state collected from the
// configuration round.
type reserveRaw struct {
	asset  common.Address
	id     uint16
	symbol string

	cfg reserveConfig

	aToken common.Address
	vDebt  common.Address
	sDebt  common.Address
	feed   common.Address

	price      *big.Int
	varRate    *big.Int
	stableRate *big.Int
	borrowCap  *big.Int
	supplyCap  *big.Int
}

// FetchMarketState reads the pool's reserve list, every reserve's
// configuration, prices and caps, and the wallet's balances, all pinned to a
// single block. A zero blockNumber resolves to the latest block; a non-zero
// one pins the whole read to that historical block. Results are cached per
// block and wallet, so repeated requests inside one block interval cost no
// RPC traffic.
func (p *PoolProvider) FetchMarketState(ctx context.Context, walletAddress string, blockNumber uint64) (*port.MarketState, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, fmt.Errorf("invalid wallet address %q", walletAddress)
	}
	wallet := common.HexToAddress(walletAddress)

	if blockNumber == 0 {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		latest, err := p.ethClient.BlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch latest block number: %w", err)
		}
		blockNumber = latest
	}

	key := cacheKey(blockNumber, walletAddress)
	if cached, found := p.cache.Get(key); found {
		metrics.MarketStateCache.WithLabelValues("hit").Inc()
		if state, ok := cached.(*port.MarketState); ok {
			return state, nil
		}
	}
	metrics.MarketStateCache.WithLabelValues("miss").Inc()

	blockTag := hexutil.EncodeUint64(blockNumber)

	assets, userConfig, eModeID, err := p.fetchUserRound(ctx, blockTag, wallet)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("pool returned an empty reserve list")
	}

	raws, category, err := p.fetchReserveRound(ctx, blockTag, assets, eModeID)
	if err != nil {
		return nil, err
	}

	reserves, positions, err := p.fetchBalanceRound(ctx, blockTag, raws, wallet, userConfig)
	if err != nil {
		return nil, err
	}

	state := &port.MarketState{
		BlockNumber: blockNumber,
		Reserves:    reserves,
		Positions:   positions,
		Account:     buildAccountContext(walletAddress, reserves, positions, category),
	}

	p.cache.SetDefault(key, state)

	p.log.Debug("market state fetched",
		zap.Uint64("block", blockNumber),
		zap.Int("reserves", len(reserves)),
		zap.String("wallet", walletAddress))

	return state, nil
}

// fetchUserRound returns the reserve list plus the wallet's configuration
// bitmap and e-mode category id.
func (p *PoolProvider) fetchUserRound(ctx context.Context, blockTag string, wallet common.Address) ([]common.Address, *big.Int, uint8, error) {
	elems, err := p.batchCall(ctx, blockTag, []viewCall{
		{to: p.pool, contract: &poolABI, method: "getReservesList"},
		{to: p.pool, contract: &poolABI, method: "getUserConfiguration", args: []interface{}{wallet}},
		{to: p.pool, contract: &poolABI, method: "getUserEMode", args: []interface{}{wallet}},
	})
	if err != nil {
		return nil, nil, 0, err
	}

	unpacked, err := unpackElem(elems[0], &poolABI, "getReservesList")
	if err != nil {
		return nil, nil, 0, err
	}
	assets, ok := unpacked[0].([]common.Address)
	if !ok {
		return nil, nil, 0, fmt.Errorf("getReservesList: expected []address, got %T", unpacked[0])
	}

	userConfig, err := unpackBigInt(elems[1], &poolABI, "getUserConfiguration")
	if err != nil {
		return nil, nil, 0, err
	}
	eMode, err := unpackBigInt(elems[2], &poolABI, "getUserEMode")
	if err != nil {
		return nil, nil, 0, err
	}

	return assets, userConfig, uint8(eMode.Uint64()), nil
}

// fetchReserveRound collects configuration, price, caps, feed source and
// symbol for every reserve, plus the e-mode category data when the wallet has
// one active.
func (p *PoolProvider) fetchReserveRound(ctx context.Context, blockTag string, assets []common.Address, eModeID uint8) ([]reserveRaw, *entity.EModeCategory, error) {
	calls := make([]viewCall, 0, len(assets)*reserveRoundCalls+1)
	for _, asset := range assets {
		calls = append(calls,
			viewCall{to: p.pool, contract: &poolABI, method: "getReserveData", args: []interface{}{asset}},
			viewCall{to: p.oracle, contract: &oracleABI, method: "getAssetPrice", args: []interface{}{asset}},
			viewCall{to: p.dataProvider, contract: &dataProviderABI, method: "getReserveCaps", args: []interface{}{asset}},
			viewCall{to: p.oracle, contract: &oracleABI, method: "getSourceOfAsset", args: []interface{}{asset}},
			viewCall{to: asset, contract: &erc20ABI, method: "symbol"},
		)
	}
	if eModeID > 0 {
		calls = append(calls, viewCall{to: p.pool, contract: &poolABI, method: "getEModeCategoryData", args: []interface{}{eModeID}})
	}

	elems, err := p.batchCall(ctx, blockTag, calls)
	if err != nil {
		return nil, nil, err
	}

	raws := make([]reserveRaw, len(assets))
	for i, asset := range assets {
		base := i * reserveRoundCalls
		raw, err := p.decodeReserve(asset, elems[base:base+reserveRoundCalls])
		if err != nil {
			return nil, nil, fmt.Errorf("reserve %s: %w", asset.Hex(), err)
		}
		raws[i] = raw
	}

	var category *entity.EModeCategory
	if eModeID > 0 {
		category, err = decodeEModeCategory(eModeID, elems[len(elems)-1])
		if err != nil {
			return nil, nil, err
		}
	}

	return raws, category, nil
}

func (p *PoolProvider) decodeReserve(asset common.Address, elems []rpc.BatchElem) (reserveRaw, error) {
	raw := reserveRaw{asset: asset}

	data, err := unpackElem(elems[0], &poolABI, "getReserveData")
	if err != nil {
		return raw, err
	}
	configWord, ok := data[0].(*big.Int)
	if !ok {
		return raw, fmt.Errorf("getReserveData: expected configuration word, got %T", data[0])
	}
	raw.cfg = decodeReserveConfig(configWord)
	raw.varRate, _ = data[4].(*big.Int)
	raw.stableRate, _ = data[5].(*big.Int)
	if id, ok := data[7].(uint16); ok {
		raw.id = id
	}
	raw.aToken, _ = data[8].(common.Address)
	raw.sDebt, _ = data[9].(common.Address)
	raw.vDebt, _ = data[10].(common.Address)

	raw.price, err = unpackBigInt(elems[1], &oracleABI, "getAssetPrice")
	if err != nil {
		return raw, err
	}

	caps, err := unpackElem(elems[2], &dataProviderABI, "getReserveCaps")
	if err != nil {
		return raw, err
	}
	raw.borrowCap, _ = caps[0].(*big.Int)
	raw.supplyCap, _ = caps[1].(*big.Int)

	raw.feed, err = unpackAddress(elems[3], &oracleABI, "getSourceOfAsset")
	if err != nil {
		// Some oracle deployments do not expose per-asset sources; the
		// snapshot then reports the oracle itself as the feed.
		p.log.Warn("getSourceOfAsset failed, falling back to oracle address",
			zap.String("asset", asset.Hex()), zap.Error(err))
		raw.feed = p.oracle
	}

	if sym, symErr := unpackElem(elems[4], &erc20ABI, "symbol"); symErr == nil {
		raw.symbol, _ = sym[0].(string)
	}
	if raw.symbol == "" {
		raw.symbol = strings.ToUpper(asset.Hex()[2:8])
	}

	return raw, nil
}

func decodeEModeCategory(id uint8, elem rpc.BatchElem) (*entity.EModeCategory, error) {
	if elem.Error != nil {
		return nil, fmt.Errorf("e-mode category %d: %w", id, elem.Error)
	}
	raw, ok := elem.Result.(*hexutil.Bytes)
	if !ok || raw == nil || len(*raw) == 0 {
		return nil, fmt.Errorf("e-mode category %d: getEModeCategoryData returned no data", id)
	}

	// The pool returns the category as a struct, so the call data carries a
	// single dynamic tuple.
	var data struct {
		Ltv                  uint16
		LiquidationThreshold uint16
		LiquidationBonus     uint16
		PriceSource          common.Address
		Label                string
	}
	if err := poolABI.UnpackIntoInterface(&data, "getEModeCategoryData", *raw); err != nil {
		return nil, fmt.Errorf("failed to unpack e-mode category %d: %w", id, err)
	}

	cat := &entity.EModeCategory{
		ID:                   id,
		Label:                data.Label,
		LTV:                  decimal.New(int64(data.Ltv), 0).Div(bpsScale),
		LiquidationThreshold: decimal.New(int64(data.LiquidationThreshold), 0).Div(bpsScale),
	}
	if b := decimal.New(int64(data.LiquidationBonus), 0); b.GreaterThan(bonusBase) {
		cat.LiquidationBonus = b.Sub(bonusBase).Div(bpsScale)
	} else {
		cat.LiquidationBonus = decimal.Zero
	}
	return cat, nil
}

// fetchBalanceRound reads the wallet's aToken and debt token balances plus
// reserve-wide supplies, and each price feed's last update time.
func (p *PoolProvider) fetchBalanceRound(ctx context.Context, blockTag string, raws []reserveRaw, wallet common.Address, userConfig *big.Int) ([]entity.ReserveSnapshot, []entity.UserPosition, error) {
	calls := make([]viewCall, 0, len(raws)*(balanceRoundCalls+1))
	feedIdx := make([]int, len(raws))
	for i, raw := range raws {
		calls = append(calls,
			viewCall{to: raw.aToken, contract: &erc20ABI, method: "balanceOf", args: []interface{}{wallet}},
			viewCall{to: raw.vDebt, contract: &erc20ABI, method: "balanceOf", args: []interface{}{wallet}},
			viewCall{to: raw.sDebt, contract: &erc20ABI, method: "balanceOf", args: []interface{}{wallet}},
			viewCall{to: raw.aToken, contract: &erc20ABI, method: "totalSupply"},
			viewCall{to: raw.vDebt, contract: &erc20ABI, method: "totalSupply"},
			viewCall{to: raw.sDebt, contract: &erc20ABI, method: "totalSupply"},
		)
		feedIdx[i] = -1
		if raw.feed != (common.Address{}) {
			feedIdx[i] = len(calls)
			calls = append(calls, viewCall{to: raw.feed, contract: &aggregatorABI, method: "latestRoundData"})
		}
	}

	elems, err := p.batchCall(ctx, blockTag, calls)
	if err != nil {
		return nil, nil, err
	}

	reserves := make([]entity.ReserveSnapshot, len(raws))
	positions := make([]entity.UserPosition, len(raws))

	next := 0
	for i, raw := range raws {
		supplied, vDebt, sDebt, aTotal, vTotal, sTotal, err := decodeBalances(elems[next : next+balanceRoundCalls])
		if err != nil {
			return nil, nil, fmt.Errorf("reserve %s balances: %w", raw.asset.Hex(), err)
		}
		next += balanceRoundCalls

		var updatedAt time.Time
		if feedIdx[i] >= 0 {
			if round, roundErr := unpackElem(elems[feedIdx[i]], &aggregatorABI, "latestRoundData"); roundErr == nil {
				if ts, ok := round[3].(*big.Int); ok && ts.IsInt64() && ts.Sign() > 0 {
					updatedAt = time.Unix(ts.Int64(), 0).UTC()
				}
			} else {
				p.log.Debug("latestRoundData failed, feed timestamp omitted",
					zap.String("feed", raw.feed.Hex()), zap.Error(roundErr))
			}
			next++
		}

		asset := entity.AssetRef{
			Symbol:   raw.symbol,
			Address:  raw.asset.Hex(),
			Decimals: raw.cfg.Decimals,
		}

		totalSupplied := decimal.NewFromBigInt(aTotal, -int32(raw.cfg.Decimals))
		totalBorrowed := decimal.NewFromBigInt(new(big.Int).Add(vTotal, sTotal), -int32(raw.cfg.Decimals))
		utilization := decimal.Zero
		if totalSupplied.IsPositive() {
			utilization = totalBorrowed.Div(totalSupplied)
		}

		reserves[i] = entity.ReserveSnapshot{
			Asset:                   asset,
			Price:                   entity.OraclePrice{PriceUSD: decimal.NewFromBigInt(raw.price, 0).Div(p.baseCurrencyUnit), UpdatedAt: updatedAt},
			LTV:                     raw.cfg.LTV,
			LiquidationThreshold:    raw.cfg.LiquidationThreshold,
			LiquidationBonus:        raw.cfg.LiquidationBonus,
			SupplyCap:               raw.supplyCap,
			BorrowCap:               raw.borrowCap,
			VariableBorrowAPY:       rayToRatio(raw.varRate),
			StableBorrowAPY:         rayToRatio(raw.stableRate),
			Utilization:             utilization,
			TotalSupplied:           totalSupplied,
			TotalBorrowed:           totalBorrowed,
			EModeCategory:           raw.cfg.EModeCategory,
			CollateralEnabled:       raw.cfg.CollateralEnabled,
			IsolationDebtCeilingUSD: raw.cfg.DebtCeilingUSD,
			PriceFeed:               raw.feed.Hex(),
		}

		positions[i] = entity.UserPosition{
			Asset:             asset,
			Supplied:          supplied,
			VariableDebt:      vDebt,
			StableDebt:        sDebt,
			CollateralEnabled: usingAsCollateral(userConfig, raw.id),
		}
	}

	return reserves, positions, nil
}

func decodeBalances(elems []rpc.BatchElem) (supplied, vDebt, sDebt, aTotal, vTotal, sTotal *big.Int, err error) {
	out := make([]*big.Int, balanceRoundCalls)
	methods := [balanceRoundCalls]string{"balanceOf", "balanceOf", "balanceOf", "totalSupply", "totalSupply", "totalSupply"}
	for i := range out {
		out[i], err = unpackBigInt(elems[i], &erc20ABI, methods[i])
		if err != nil {
			return nil, nil, nil, nil, nil, nil, err
		}
	}
	return out[0], out[1], out[2], out[3], out[4], out[5], nil
}

func rayToRatio(rate *big.Int) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(rate, 0).Div(rayScale)
}

// usingAsCollateral reads the wallet's usage-as-collateral bit for a reserve
// id from the packed user configuration word. Bits come in per-reserve pairs,
// borrowing low, collateral usage high.
func usingAsCollateral(userConfig *big.Int, reserveID uint16) bool {
	if userConfig == nil {
		return false
	}
	return userConfig.Bit(int(reserveID)*2+1) == 1
}

// buildAccountContext derives the wallet's protocol mode. A sole
// isolation-enabled collateral asset puts the wallet in isolation mode, which
// takes precedence over an active e-mode category since the ceiling binds
// borrowing regardless of category membership.
func buildAccountContext(walletAddress string, reserves []entity.ReserveSnapshot, positions []entity.UserPosition, category *entity.EModeCategory) entity.AccountContext {
	var (
		collateralCount int
		isolated        *entity.ReserveSnapshot
	)
	for i, pos := range positions {
		if pos.Supplied == nil || pos.Supplied.Sign() == 0 || !pos.CollateralEnabled || !reserves[i].CollateralEnabled {
			continue
		}
		collateralCount++
		if reserves[i].IsolationDebtCeilingUSD.IsPositive() {
			isolated = &reserves[i]
		}
	}

	if collateralCount == 1 && isolated != nil {
		return entity.IsolationAccount(walletAddress, isolated.Asset, isolated.IsolationDebtCeilingUSD)
	}
	if category != nil {
		return entity.EModeAccount(walletAddress, *category)
	}
	return entity.NormalAccount(walletAddress)
}
