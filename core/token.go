package core

import "github.com/shopspring/decimal"

// NativeToken is the display symbol of the network's native unit,
// stored internally as the empty token id.
const NativeToken = "FLSS"

// Token describes a fungible token minted on the network.
type Token struct {
	Symbol string          `json:"symbol"`
	Supply decimal.Decimal `json:"supply"`
	Owner  string          `json:"owner,omitempty"`
}
