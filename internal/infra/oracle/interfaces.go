package oracle

import (
	"context"

	"github.com/shopspring/decimal"
)

type RateSourceInterface interface {
	GetExchangeRate(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

var _ RateSourceInterface = (*RateClient)(nil)
