package domain

import "github.com/shopspring/decimal"

// Currency is the settlement currency of an order. SOL settles as native
// lamport transfers, USDC as SPL token transfers.
type Currency string

const (
	CurrencySOL  Currency = "SOL"
	CurrencyUSDC Currency = "USDC"
)

func (c Currency) Valid() bool {
	return c == CurrencySOL || c == CurrencyUSDC
}

// Decimals returns the number of base-10 digits between the display unit
// and the chain's minor unit (lamports for SOL, base units for USDC).
func (c Currency) Decimals() int32 {
	if c == CurrencyUSDC {
		return 6
	}
	return 9
}

// ToMinorUnits converts a display amount into integer chain units,
// truncating anything below the smallest representable unit.
func ToMinorUnits(amount decimal.Decimal, c Currency) uint64 {
	shifted := amount.Shift(c.Decimals())
	if shifted.Sign() <= 0 {
		return 0
	}
	return uint64(shifted.IntPart())
}

func FromMinorUnits(n uint64, c Currency) decimal.Decimal {
	return decimal.NewFromInt(int64(n)).Shift(-c.Decimals())
}
