package polymarket

// Tipos del wire de la API de Polymarket.

// priceResponse es la respuesta de GET /price del CLOB.
type priceResponse struct {
	Price string `json:"price"`
}

// gammaMarket es un market del Gamma API.
type gammaMarket struct {
	ID             string  `json:"id"`
	ConditionID    string  `json:"conditionId"`
	Question       string  `json:"question"`
	Slug           string  `json:"slug"`
	EndDateISO     string  `json:"endDateIso"`
	Liquidity      string  `json:"liquidity"`
	Volume24hr     float64 `json:"volume24hr"`
	Active         bool    `json:"active"`
	Closed         bool    `json:"closed"`
	ClobTokenIDs   string  `json:"clobTokenIds"`
	Outcomes       string  `json:"outcomes"`
	OutcomePrices  string  `json:"outcomePrices"`
	BestBid        float64 `json:"bestBid"`
	BestAsk        float64 `json:"bestAsk"`
	OrderPriceMinT float64 `json:"orderPriceMinTickSize"`
}

// orderRequest es el payload de creación de orden del CLOB.
type orderRequest struct {
	TokenID   string  `json:"token_id"`
	Side      string  `json:"side"`
	Size      float64 `json:"size"`
	Price     float64 `json:"price,omitempty"`
	OrderType string  `json:"order_type"`
	Owner     string  `json:"owner,omitempty"`
}

// orderResponse es la respuesta de creación de orden del CLOB.
type orderResponse struct {
	Success   bool   `json:"success"`
	ErrorMsg  string `json:"errorMsg"`
	OrderID   string `json:"orderID"`
	Status    string `json:"status"`
	TakingAmt string `json:"takingAmount"`
	MakingAmt string `json:"makingAmount"`
}

// openOrder es una orden abierta del CLOB.
type openOrder struct {
	ID           string `json:"id"`
	AssetID      string `json:"asset_id"`
	Side         string `json:"side"`
	Price        string `json:"price"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	CreatedAt    int64  `json:"created_at"`
}

// cancelResponse es la respuesta de cancelación de orden.
type cancelResponse struct {
	Canceled    []string          `json:"canceled"`
	NotCanceled map[string]string `json:"not_canceled"`
}

// wsTradeEvent es un evento de trade del websocket de data-api.
type wsTradeEvent struct {
	Type            string  `json:"type"`
	ProxyWallet     string  `json:"proxyWallet"`
	Side            string  `json:"side"`
	Asset           string  `json:"asset"`
	ConditionID     string  `json:"conditionId"`
	Size            float64 `json:"size"`
	Price           float64 `json:"price"`
	Timestamp       int64   `json:"timestamp"`
	Title           string  `json:"title"`
	Outcome         string  `json:"outcome"`
	TransactionHash string  `json:"transactionHash"`
}
