package polymarket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ultratrader/internal/adapters/polymarket"
	"github.com/alejandrodnm/ultratrader/internal/domain"
)

func newTestClient(clobSrv, gammaSrv *httptest.Server) *polymarket.Client {
	clobURL, gammaURL := "", ""
	if clobSrv != nil {
		clobURL = clobSrv.URL
	}
	if gammaSrv != nil {
		gammaURL = gammaSrv.URL
	}
	return polymarket.NewClient(clobURL, gammaURL, "", polymarket.Credentials{})
}

func TestGetPrice_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok1", r.URL.Query().Get("token_id"))
		assert.Equal(t, "BUY", r.URL.Query().Get("side"))
		w.Write([]byte(`{"price": "0.5325"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, nil)
	price, err := c.GetPrice(context.Background(), "tok1", domain.SideBuy)

	require.NoError(t, err)
	assert.InDelta(t, 0.5325, price, 1e-9)
}

func TestGetPrice_EmptyMeansUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"price": ""}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, nil)
	price, err := c.GetPrice(context.Background(), "tok1", domain.SideSell)

	require.NoError(t, err)
	assert.Equal(t, 0.0, price)
}

func TestGetPrice_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"price": "0.40"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, nil)
	price, err := c.GetPrice(context.Background(), "tok1", domain.SideBuy)

	require.NoError(t, err)
	assert.InDelta(t, 0.40, price, 1e-9)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetPrice_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "unknown token"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, nil)
	_, err := c.GetPrice(context.Background(), "tok1", domain.SideBuy)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestActiveMarkets_MapsGammaPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		w.Write([]byte(`[{
			"conditionId": "0xbtc",
			"question": "Will BTC hit 100k?",
			"slug": "will-btc-hit-100k",
			"endDateIso": "2026-12-31",
			"volume24hr": 125000.5,
			"active": true,
			"closed": false,
			"clobTokenIds": "[\"tok-yes\",\"tok-no\"]",
			"outcomes": "[\"Yes\",\"No\"]",
			"outcomePrices": "[\"0.62\",\"0.38\"]"
		}, {
			"conditionId": "0xbroken",
			"question": "No tokens here",
			"clobTokenIds": "not-json"
		}]`))
	}))
	defer srv.Close()

	c := newTestClient(nil, srv)
	markets, err := c.ActiveMarkets(context.Background(), 10)

	require.NoError(t, err)
	// El mercado sin tokens parseables se descarta.
	require.Len(t, markets, 1)

	m := markets[0]
	assert.Equal(t, "0xbtc", m.ConditionID)
	assert.InDelta(t, 125000.5, m.Volume24h, 1e-9)

	yes, ok := m.TokenFor(domain.OutcomeYes)
	require.True(t, ok)
	assert.Equal(t, "tok-yes", yes.TokenID)
	assert.InDelta(t, 0.62, yes.Price, 1e-9)

	no, ok := m.TokenFor(domain.OutcomeNo)
	require.True(t, ok)
	assert.InDelta(t, 0.38, no.Price, 1e-9)
}
