package model

import (
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// TokenRecord is the latest launched token as reported by the token source.
// Numeric fields are zero when the source omits or nulls them.
type TokenRecord struct {
	Name                 string          `json:"name"`
	Symbol               string          `json:"symbol"`
	Description          string          `json:"description"`
	Mint                 string          `json:"mint"`
	Website              string          `json:"website"`
	Twitter              string          `json:"twitter"`
	Creator              string          `json:"creator"`
	MarketCap            decimal.Decimal `json:"market_cap"`
	TotalSupply          Count           `json:"total_supply"`
	VirtualSolReserves   Count           `json:"virtual_sol_reserves"`
	VirtualTokenReserves Count           `json:"virtual_token_reserves"`
	RealSolReserves      Count           `json:"real_sol_reserves"`
	RealTokenReserves    Count           `json:"real_token_reserves"`
}

// SolPriceQuote is the current SOL/USD price.
type SolPriceQuote struct {
	SolPrice decimal.Decimal `json:"solPrice"`
}

// TradeRecord is the most recent trade reported by the trade source.
type TradeRecord struct {
	Mint        string `json:"mint"`
	Signature   string `json:"signature"`
	SolAmount   Count  `json:"sol_amount"`
	TokenAmount Count  `json:"token_amount"`
	IsBuy       bool   `json:"is_buy"`
	User        string `json:"user"`
}

// ValidMint reports whether mint decodes as a 32-byte base58 Solana address.
func ValidMint(mint string) bool {
	if mint == "" {
		return false
	}
	b, err := base58.Decode(mint)
	return err == nil && len(b) == 32
}
