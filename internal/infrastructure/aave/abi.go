package aave

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ABI fragments for the Aave v3 pool, its addresses provider, the
// price oracle, the protocol data provider, ERC20 tokens and Chainlink
// aggregators. Only the view functions the provider actually calls.
const (
	poolABIJSON = `[
	{"name":"getReservesList","inputs":[],"outputs":[{"type":"address[]","name":""}],"stateMutability":"view","type":"function"},
	{"name":"getReserveData","inputs":[{"name":"asset","type":"address"}],"outputs":[
		{"name":"configuration","type":"uint256"},
		{"name":"liquidityIndex","type":"uint128"},
		{"name":"currentLiquidityRate","type":"uint128"},
		{"name":"variableBorrowIndex","type":"uint128"},
		{"name":"currentVariableBorrowRate","type":"uint128"},
		{"name":"currentStableBorrowRate","type":"uint128"},
		{"name":"lastUpdateTimestamp","type":"uint40"},
		{"name":"id","type":"uint16"},
		{"name":"aTokenAddress","type":"address"},
		{"name":"stableDebtTokenAddress","type":"address"},
		{"name":"variableDebtTokenAddress","type":"address"},
		{"name":"interestRateStrategyAddress","type":"address"},
		{"name":"accruedToTreasury","type":"uint128"},
		{"name":"unbacked","type":"uint128"},
		{"name":"isolationModeTotalDebt","type":"uint128"}],
	 "stateMutability":"view","type":"function"},
	{"name":"getUserConfiguration","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"data","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"name":"getUserEMode","inputs":[{"name":"user","type":"address"}],"outputs":[{"type":"uint256","name":""}],"stateMutability":"view","type":"function"},
	{"name":"getEModeCategoryData","inputs":[{"name":"id","type":"uint8"}],"outputs":[
		{"name":"","type":"tuple","components":[
			{"name":"ltv","type":"uint16"},
			{"name":"liquidationThreshold","type":"uint16"},
			{"name":"liquidationBonus","type":"uint16"},
			{"name":"priceSource","type":"address"},
			{"name":"label","type":"string"}]}],
	 "stateMutability":"view","type":"function"},
	{"name":"ADDRESSES_PROVIDER","inputs":[],"outputs":[{"type":"address","name":""}],"stateMutability":"view","type":"function"}
]`

	addressesProviderABIJSON = `[
	{"name":"getPriceOracle","inputs":[],"outputs":[{"type":"address","name":""}],"stateMutability":"view","type":"function"},
	{"name":"getPoolDataProvider","inputs":[],"outputs":[{"type":"address","name":""}],"stateMutability":"view","type":"function"}
]`

	priceOracleABIJSON = `[
	{"name":"getAssetPrice","inputs":[{"name":"asset","type":"address"}],"outputs":[{"type":"uint256","name":""}],"stateMutability":"view","type":"function"},
	{"name":"getSourceOfAsset","inputs":[{"name":"asset","type":"address"}],"outputs":[{"type":"address","name":""}],"stateMutability":"view","type":"function"},
	{"name":"BASE_CURRENCY_UNIT","inputs":[],"outputs":[{"type":"uint256","name":""}],"stateMutability":"view","type":"function"}
]`

	dataProviderABIJSON = `[
	{"name":"getReserveCaps","inputs":[{"name":"asset","type":"address"}],"outputs":[
		{"name":"borrowCap","type":"uint256"},
		{"name":"supplyCap","type":"uint256"}],
	 "stateMutability":"view","type":"function"}
]`

	erc20ABIJSON = `[
	{"name":"symbol","inputs":[],"outputs":[{"type":"string","name":""}],"stateMutability":"view","type":"function"},
	{"name":"decimals","inputs":[],"outputs":[{"type":"uint8","name":""}],"stateMutability":"view","type":"function"},
	{"name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"type":"uint256","name":""}],"stateMutability":"view","type":"function"},
	{"name":"totalSupply","inputs":[],"outputs":[{"type":"uint256","name":""}],"stateMutability":"view","type":"function"}
]`

	aggregatorABIJSON = `[
	{"name":"latestRoundData","inputs":[],"outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}],
	 "stateMutability":"view","type":"function"}
]`
)

var (
	parsedABIsOnce sync.Once

	poolABI         abi.ABI
	providerABI     abi.ABI
	oracleABI       abi.ABI
	dataProviderABI abi.ABI
	erc20ABI        abi.ABI
	aggregatorABI   abi.ABI
)

func initParsedABIs() {
	parsedABIsOnce.Do(func() {
		parse := func(name, src string) abi.ABI {
			parsed, err := abi.JSON(strings.NewReader(src))
			if err != nil {
				// Static ABI text failing to parse is a programming
				// error, panic is appropriate.
				panic(fmt.Sprintf("failed to parse %s ABI: %v", name, err))
			}
			return parsed
		}
		poolABI = parse("pool", poolABIJSON)
		providerABI = parse("addresses provider", addressesProviderABIJSON)
		oracleABI = parse("price oracle", priceOracleABIJSON)
		dataProviderABI = parse("protocol data provider", dataProviderABIJSON)
		erc20ABI = parse("erc20", erc20ABIJSON)
		aggregatorABI = parse("chainlink aggregator", aggregatorABIJSON)
	})
}
