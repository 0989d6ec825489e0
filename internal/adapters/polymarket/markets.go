package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

const gammaMarketsPath = "/markets"

// ActiveMarkets obtiene mercados activos de Gamma, ordenados por volumen 24h.
// Los mercados sin token IDs parseables se descartan con un log de debug.
func (c *Client) ActiveMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	if limit <= 0 {
		limit = 50
	}
	u := fmt.Sprintf("%s%s?active=true&closed=false&order=volume24hr&ascending=false&limit=%d",
		c.gammaBase, gammaMarketsPath, limit)

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("polymarket.ActiveMarkets: %w", err)
	}

	markets := make([]domain.Market, 0, len(resp))
	for _, gm := range resp {
		m, ok := mapGammaMarket(gm)
		if !ok {
			slog.Debug("skipping market without parseable tokens", "condition_id", gm.ConditionID)
			continue
		}
		markets = append(markets, m)
	}
	return markets, nil
}

// MarketBySlug busca un mercado concreto por su slug.
func (c *Client) MarketBySlug(ctx context.Context, slug string) (*domain.Market, error) {
	u := fmt.Sprintf("%s%s?slug=%s", c.gammaBase, gammaMarketsPath, url.QueryEscape(slug))

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("polymarket.MarketBySlug: %w", err)
	}
	if len(resp) == 0 {
		return nil, nil
	}
	m, ok := mapGammaMarket(resp[0])
	if !ok {
		return nil, fmt.Errorf("polymarket.MarketBySlug: market %s has no parseable tokens", slug)
	}
	return &m, nil
}

// mapGammaMarket convierte un market de Gamma al tipo de dominio.
// Gamma codifica tokens, outcomes y precios como strings JSON anidados.
func mapGammaMarket(gm gammaMarket) (domain.Market, bool) {
	var tokenIDs, outcomes, prices []string
	if err := json.Unmarshal([]byte(gm.ClobTokenIDs), &tokenIDs); err != nil || len(tokenIDs) != 2 {
		return domain.Market{}, false
	}
	// Outcomes y precios son opcionales; el orden YES/NO sigue el de tokenIDs.
	_ = json.Unmarshal([]byte(gm.Outcomes), &outcomes)
	_ = json.Unmarshal([]byte(gm.OutcomePrices), &prices)

	m := domain.Market{
		ConditionID: gm.ConditionID,
		Question:    gm.Question,
		Slug:        gm.Slug,
		Volume24h:   gm.Volume24hr,
		Active:      gm.Active,
		Closed:      gm.Closed,
	}
	if gm.EndDateISO != "" {
		if t, err := time.Parse("2006-01-02", gm.EndDateISO); err == nil {
			m.EndDate = t
		} else if t, err := time.Parse(time.RFC3339, gm.EndDateISO); err == nil {
			m.EndDate = t
		}
	}

	sides := [2]domain.Outcome{domain.OutcomeYes, domain.OutcomeNo}
	for i := 0; i < 2; i++ {
		tok := domain.Token{TokenID: tokenIDs[i], Outcome: sides[i]}
		if i < len(outcomes) {
			// Gamma devuelve "Yes"/"No" con mayúscula inicial.
			if o := domain.Outcome(strings.ToUpper(outcomes[i])); o == domain.OutcomeYes || o == domain.OutcomeNo {
				tok.Outcome = o
			}
		}
		if i < len(prices) {
			if p, err := strconv.ParseFloat(prices[i], 64); err == nil {
				tok.Price = p
			}
		}
		m.Tokens[i] = tok
	}
	return m, true
}
