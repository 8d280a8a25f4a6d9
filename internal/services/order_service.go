package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/oracle"
	rabbit "checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// PaymentPolicy is server-side configuration: the platform recipient and
// minimum amount are never client-supplied.
type PaymentPolicy struct {
	Recipient  string
	FeeBps     int64
	MinimumUSD decimal.Decimal
}

type CheckoutInput struct {
	Email           string
	Currency        domain.Currency
	FulfillmentType domain.FulfillmentType
	ShippingAddress *domain.ShippingAddress
	PickupNotes     string
}

type OrderService struct {
	repo      repository.OrderRepository
	carts     repository.CartRepository
	rates     oracle.RateSourceInterface
	publisher rabbit.PublisherInterface
	intents   IntentStoreInterface
	policy    PaymentPolicy
}

func NewOrderService(r repository.OrderRepository, c repository.CartRepository, rates oracle.RateSourceInterface, pub rabbit.PublisherInterface, policy PaymentPolicy) *OrderService {
	return &OrderService{
		repo:      r,
		carts:     c,
		rates:     rates,
		publisher: pub,
		policy:    policy,
	}
}

func (u *OrderService) SetIntentStore(store IntentStoreInterface) {
	u.intents = store
}

// CreateOrder turns the customer's cart into one pending order per store.
// Totals are recomputed here from the server-side rate and pinned on the
// order; whatever the UI displayed is only an estimate. Stock decrement
// and order insertion happen in one repository transaction.
func (u *OrderService) CreateOrder(ctx context.Context, customerID uint64, in CheckoutInput) ([]*domain.Order, error) {
	if !in.Currency.Valid() {
		return nil, fmt.Errorf("unsupported payment currency %q", in.Currency)
	}

	items, err := u.carts.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	if in.FulfillmentType == domain.FulfillmentPickup {
		supported := false
		for _, it := range items {
			if it.Product.AllowPickup {
				supported = true
				break
			}
		}
		if !supported {
			return nil, domain.ErrInvalidFulfillment
		}
	}

	usdTotal := decimal.Zero
	for _, it := range items {
		usdTotal = usdTotal.Add(it.Product.PriceUSD.Mul(decimal.NewFromInt(it.Quantity)))
	}
	if usdTotal.LessThan(u.policy.MinimumUSD) {
		return nil, domain.ErrBelowMinimum
	}

	rate := decimal.NewFromInt(1)
	if in.Currency == domain.CurrencySOL {
		rate, err = u.rates.GetExchangeRate(ctx, "SOL", "USD")
		if err != nil {
			return nil, fmt.Errorf("exchange rate unavailable: %w", err)
		}
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("exchange rate unavailable")
		}
	}

	orders := u.buildStoreOrders(customerID, items, in, rate)

	if err := u.repo.CreateOrders(ctx, orders); err != nil {
		return nil, err
	}

	for _, order := range orders {
		u.recordIntent(ctx, order)
		go u.publishOrderCreated(context.Background(), order)
	}

	if err := u.carts.ClearCustomer(ctx, customerID); err != nil {
		log.Printf("failed to clear cart for customer %d: %v", customerID, err)
	}

	return orders, nil
}

// buildStoreOrders groups cart items per store and snapshots product data
// into order items, converting USD catalog prices at the pinned rate.
func (u *OrderService) buildStoreOrders(customerID uint64, items []domain.CartItem, in CheckoutInput, rate decimal.Decimal) []*domain.Order {
	storeIDs := make([]uint64, 0, 4)
	byStore := make(map[uint64][]domain.CartItem)
	for _, it := range items {
		sid := it.Product.StoreID
		if _, ok := byStore[sid]; !ok {
			storeIDs = append(storeIDs, sid)
		}
		byStore[sid] = append(byStore[sid], it)
	}

	feeFactor := decimal.NewFromInt(10000 - u.policy.FeeBps).Div(decimal.NewFromInt(10000))

	orders := make([]*domain.Order, 0, len(storeIDs))
	for _, sid := range storeIDs {
		order := &domain.Order{
			OrderNumber:     newOrderNumber(),
			CustomerID:      customerID,
			StoreID:         sid,
			Email:           in.Email,
			Status:          domain.StatusPending,
			PaymentStatus:   domain.PaymentPending,
			PaymentCurrency: in.Currency,
			FulfillmentType: in.FulfillmentType,
			PickupNotes:     in.PickupNotes,
		}
		if in.ShippingAddress != nil {
			order.ShippingAddress = *in.ShippingAddress
		}

		subtotal := decimal.Zero
		for _, it := range byStore[sid] {
			unitUSD := it.Product.PriceUSD
			unit := unitUSD
			if in.Currency == domain.CurrencySOL {
				unit = unitUSD.DivRound(rate, domain.CurrencySOL.Decimals())
			}
			subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(it.Quantity)))

			order.Items = append(order.Items, domain.OrderItem{
				ProductID:    it.ProductID,
				Name:         it.Product.Name,
				ImageURL:     it.Product.ImageURL,
				Variant:      it.Variant,
				Quantity:     it.Quantity,
				UnitPriceUSD: unitUSD,
				UnitPrice:    unit,
				Currency:     in.Currency,
			})
		}

		order.Subtotal = subtotal
		order.Total = subtotal
		order.MerchantAmount = subtotal.Mul(feeFactor).Round(domain.CurrencySOL.Decimals())
		orders = append(orders, order)
	}

	return orders
}

// MarkPaid applies the pending→completed transition exactly once. A second
// call for an already-completed order returns it unchanged.
func (u *OrderService) MarkPaid(ctx context.Context, id uint64, txSignature string, amountPaid decimal.Decimal) (*domain.Order, error) {
	applied, err := u.repo.MarkPaid(ctx, id, txSignature, amountPaid, time.Now())
	if err != nil {
		return nil, err
	}

	order, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if applied {
		go u.publishOrderPaid(context.Background(), order)
	}

	return order, nil
}

// MarkFailed records a failed payment. Stock is not restocked here;
// abandoned-order restocking is a product decision, not this service's.
func (u *OrderService) MarkFailed(ctx context.Context, id uint64, reason string) (*domain.Order, error) {
	if err := u.repo.MarkFailed(ctx, id, reason); err != nil {
		return nil, err
	}
	order, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	// A completed payment is never demoted to failed.
	if order.PaymentStatus == domain.PaymentCompleted {
		return nil, domain.ErrOrderAlreadyPaid
	}
	return order, nil
}

func (u *OrderService) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (u *OrderService) GetOrdersByCustomer(ctx context.Context, customerID uint64) ([]domain.Order, error) {
	out, err := u.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrOrderNotFound
	}
	return out, nil
}

func (u *OrderService) recordIntent(ctx context.Context, order *domain.Order) {
	if u.intents == nil {
		return
	}
	err := u.intents.Put(ctx, domain.PaymentIntent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Recipient:   u.policy.Recipient,
		Currency:    order.PaymentCurrency,
		Amount:      order.Total,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		log.Printf("failed to record payment intent for order %d: %v", order.ID, err)
	}
}

func (u *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		StoreID:     order.StoreID,
		Total:       order.Total,
		Currency:    order.PaymentCurrency,
		CreatedAt:   order.CreatedAt,
	}
	if err := u.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("failed to publish order.created for order %d: %v", order.ID, err)
	}
}

func (u *OrderService) publishOrderPaid(ctx context.Context, order *domain.Order) {
	evt := domain.OrderPaidEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		StoreID:     order.StoreID,
		AmountPaid:  order.AmountPaid,
		Currency:    order.PaymentCurrency,
	}
	if order.TxSignature != nil {
		evt.TxSignature = *order.TxSignature
	}
	if order.PaidAt != nil {
		evt.PaidAt = *order.PaidAt
	}
	if err := u.publisher.Publish(ctx, "order.paid", evt); err != nil {
		log.Printf("failed to publish order.paid for order %d: %v", order.ID, err)
	}
}

func newOrderNumber() string {
	id := uuid.New().String()
	return "FL-" + strings.ToUpper(id[:8])
}
