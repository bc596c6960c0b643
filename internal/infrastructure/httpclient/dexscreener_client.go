package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"risk_checker/internal/app/port"
	"risk_checker/internal/domain/entity"
	"risk_checker/internal/infrastructure/configloader"
	"risk_checker/internal/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Confidence scores assigned to an oracle price. Confirmed means a liquid
// market price agreed with the oracle within the configured tolerance.
var (
	confidenceConfirmed = decimal.RequireFromString("0.999")
	confidenceDefault   = decimal.RequireFromString("0.99")
)

// pairData is the subset of a DEX Screener pair the cross-check needs.
type pairData struct {
	ChainID   string `json:"chainId"`
	BaseToken struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUsd  string `json:"priceUsd"`
	Liquidity *struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
}

// DEXScreenerChecker implements port.PriceCrossChecker against the DEX
// Screener token API. It only ever upgrades or leaves confidence at the
// default; API failures are logged and swallowed so a market data outage
// cannot take snapshots down with it.
type DEXScreenerChecker struct {
	client              *fasthttp.Client
	baseURL             string
	chainID             string
	timeout             time.Duration
	maxTokensPerRequest int
	tolerancePercent    decimal.Decimal
	logger              *zap.Logger
}

// NewDEXScreenerChecker creates a cross-checker from the dexScreener config
// section.
func NewDEXScreenerChecker(cfg *configloader.Config, logger *zap.Logger) *DEXScreenerChecker {
	return &DEXScreenerChecker{
		client:              &fasthttp.Client{},
		baseURL:             strings.TrimRight(cfg.DEXScreener.BaseURL, "/"),
		chainID:             cfg.Network.DEXScreenerChainID,
		timeout:             time.Duration(cfg.DEXScreener.RequestTimeoutMillis) * time.Millisecond,
		maxTokensPerRequest: cfg.DEXScreener.MaxTokensPerRequest,
		tolerancePercent:    decimal.NewFromFloat(cfg.DEXScreener.AgreementTolerancePercent),
		logger:              logger.Named("DEXScreenerChecker"),
	}
}

// ConfidenceScores returns a confidence score per reserve asset, keyed by
// lowercase address. Every reserve gets the default score; assets whose
// deepest market price agrees with the oracle within tolerance are upgraded.
func (c *DEXScreenerChecker) ConfidenceScores(ctx context.Context, reserves []entity.ReserveSnapshot) map[string]decimal.Decimal {
	scores := make(map[string]decimal.Decimal, len(reserves))
	oraclePrices := make(map[string]decimal.Decimal, len(reserves))
	addresses := make([]string, 0, len(reserves))

	for _, res := range reserves {
		addr := strings.ToLower(res.Asset.Address)
		scores[addr] = confidenceDefault
		oraclePrices[addr] = res.Price.PriceUSD
		addresses = append(addresses, res.Asset.Address)
	}

	for _, batch := range utils.BatchStrings(addresses, c.maxTokensPerRequest) {
		pairs, err := c.fetchPairs(ctx, batch)
		if err != nil {
			c.logger.Warn("price cross-check request failed, keeping default confidence",
				zap.Int("tokens", len(batch)), zap.Error(err))
			continue
		}
		c.applyPairs(scores, oraclePrices, pairs)
	}

	return scores
}

// applyPairs upgrades the score for each asset whose deepest pair agrees
// with the oracle. Pairs without liquidity or an unparseable price are
// ignored.
func (c *DEXScreenerChecker) applyPairs(scores, oraclePrices map[string]decimal.Decimal, pairs []pairData) {
	bestLiquidity := make(map[string]float64)

	for _, pair := range pairs {
		addr := strings.ToLower(pair.BaseToken.Address)
		oracle, tracked := oraclePrices[addr]
		if !tracked || pair.Liquidity == nil || pair.Liquidity.Usd <= 0 {
			continue
		}
		if pair.Liquidity.Usd <= bestLiquidity[addr] {
			continue
		}

		market, err := decimal.NewFromString(pair.PriceUsd)
		if err != nil || !market.IsPositive() || !oracle.IsPositive() {
			continue
		}
		bestLiquidity[addr] = pair.Liquidity.Usd

		deviation := oracle.Sub(market).Abs().Div(oracle).Mul(hundredPercent)
		if deviation.LessThanOrEqual(c.tolerancePercent) {
			scores[addr] = confidenceConfirmed
		} else {
			scores[addr] = confidenceDefault
			c.logger.Debug("oracle and market price disagree",
				zap.String("asset", pair.BaseToken.Symbol),
				zap.String("oracle", oracle.String()),
				zap.String("market", market.String()),
				zap.String("deviationPercent", deviation.String()))
		}
	}
}

var hundredPercent = decimal.New(1, 2)

func (c *DEXScreenerChecker) fetchPairs(ctx context.Context, tokenAddresses []string) ([]pairData, error) {
	requestURL := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, c.chainID, strings.Join(tokenAddresses, ","))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(rawBody))
	}

	// The tokens endpoint returns a bare array; older deployments wrap it in
	// a pairs object.
	var pairs []pairData
	if err := json.Unmarshal(rawBody, &pairs); err == nil {
		return pairs, nil
	}

	var wrapper struct {
		Pairs []pairData `json:"pairs"`
	}
	if err := json.Unmarshal(rawBody, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response from %s: %w", requestURL, err)
	}
	return wrapper.Pairs, nil
}

var _ port.PriceCrossChecker = (*DEXScreenerChecker)(nil)
