package services

import (
	"context"
	"fmt"
	"log"

	"checkout-service/internal/domain"
	solanainfra "checkout-service/internal/infra/solana"
)

// ReconcileService is the convergence point for all three payment paths:
// connected wallet, externally-sent manual transaction, and the on-ramp
// callback. Each produces an (orderID, signature, optional memo) tuple and
// goes through the same verification before the order is marked paid.
type ReconcileService struct {
	ledger    *OrderService
	inspector solanainfra.InspectorInterface
	intents   IntentStoreInterface
	recipient string
	usdcMint  string
}

func NewReconcileService(ledger *OrderService, inspector solanainfra.InspectorInterface, intents IntentStoreInterface, recipient, usdcMint string) *ReconcileService {
	return &ReconcileService{
		ledger:    ledger,
		inspector: inspector,
		intents:   intents,
		recipient: recipient,
		usdcMint:  usdcMint,
	}
}

// Reconcile verifies that the transaction pays the platform recipient at
// least the order total in the order's currency (and, for the manual path,
// carries the order number as memo), then marks the order paid. Every
// failure mode is returned verbatim so the caller can show a precise
// message: a buyer who paid correctly but hits a transient not-found needs
// to retry, not re-pay.
func (s *ReconcileService) Reconcile(ctx context.Context, orderID uint64, signature, expectedMemo string) (*domain.Order, error) {
	order, err := s.ledger.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Idempotent short-circuit: a double-click on "verify payment" must
	// return the paid order, not double-credit or error.
	if order.PaymentStatus == domain.PaymentCompleted {
		return order, nil
	}
	// The failed state is terminal; it is never flipped back to completed.
	if order.PaymentStatus == domain.PaymentFailed {
		return nil, fmt.Errorf("payment for order %s was marked failed and cannot be retried", order.OrderNumber)
	}

	record, err := s.inspector.InspectPayment(ctx, signature)
	if err != nil {
		return nil, err
	}
	if record.Failed {
		return nil, domain.ErrTransactionFailed
	}

	if expectedMemo != "" {
		if err := s.checkManualIntent(ctx, order, record, expectedMemo); err != nil {
			return nil, err
		}
	}

	mint := ""
	if order.PaymentCurrency == domain.CurrencyUSDC {
		mint = s.usdcMint
	}

	expected := domain.ToMinorUnits(order.Total, order.PaymentCurrency)
	paid := record.AmountTo(s.recipient, mint)
	if paid < expected {
		return nil, &domain.InsufficientPaymentError{
			Currency: order.PaymentCurrency,
			Expected: order.Total,
			Actual:   domain.FromMinorUnits(paid, order.PaymentCurrency),
		}
	}

	log.Printf("order %d reconciled against tx %s (%d/%d %s units)", orderID, signature, paid, expected, order.PaymentCurrency)

	return s.ledger.MarkPaid(ctx, orderID, signature, domain.FromMinorUnits(paid, order.PaymentCurrency))
}

// checkManualIntent enforces the manual-external path rules: the payment
// window must still be open and the on-chain memo must equal the order
// number exactly. A mismatched memo is never applied to this order.
func (s *ReconcileService) checkManualIntent(ctx context.Context, order *domain.Order, record *domain.PaymentRecord, expectedMemo string) error {
	if s.intents != nil {
		intent, err := s.intents.Get(ctx, order.ID)
		if err != nil {
			return err
		}
		if intent == nil {
			return domain.ErrIntentExpired
		}
	}

	if expectedMemo != order.OrderNumber {
		return &domain.MemoMismatchError{Expected: order.OrderNumber, Actual: expectedMemo}
	}
	if record.Memo != order.OrderNumber {
		return &domain.MemoMismatchError{Expected: order.OrderNumber, Actual: record.Memo}
	}
	return nil
}
