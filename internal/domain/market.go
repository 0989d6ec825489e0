package domain

import "time"

// Market representa un mercado de predicción binario en Polymarket.
type Market struct {
	ConditionID string
	Question    string
	Slug        string
	EndDate     time.Time
	Volume24h   float64
	Tokens      [2]Token
	Active      bool
	Closed      bool
}

// Token es uno de los dos lados del mercado (YES/NO).
type Token struct {
	TokenID string
	Outcome Outcome
	Price   float64 // último precio mid del CLOB
}

// TokenFor returns the token for the given outcome, if present.
func (m Market) TokenFor(outcome Outcome) (Token, bool) {
	for _, t := range m.Tokens {
		if t.Outcome == outcome {
			return t, true
		}
	}
	return Token{}, false
}

// HoursToResolution devuelve las horas restantes hasta la resolución.
// 0 si no hay end date.
func (m Market) HoursToResolution() float64 {
	if m.EndDate.IsZero() {
		return 0
	}
	return time.Until(m.EndDate).Hours()
}
