package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/mocks"
	"checkout-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testPolicy() PaymentPolicy {
	return PaymentPolicy{
		Recipient:  TestRecipient,
		FeeBps:     250,
		MinimumUSD: decimal.NewFromInt(1),
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		input         CheckoutInput
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockCartRepository, *mocks.MockRateSource, *mocks.MockPublisher)
		expectedError error
		check         func(*testing.T, []*domain.Order)
	}{
		{
			name: "successful checkout in SOL",
			input: CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencySOL,
				FulfillmentType: domain.FulfillmentShipping,
				ShippingAddress: &domain.ShippingAddress{Name: "Buyer", Line1: "1 Main St", City: "Austin", Country: "US"},
			},
			setupMocks: func(repo *mocks.MockOrderRepository, carts *mocks.MockCartRepository, rates *mocks.MockRateSource, pub *mocks.MockPublisher) {
				carts.On("FindByCustomer", mock.Anything, TestCustomerID).Return([]domain.CartItem{
					CreateTestCartItem(1, 1, "50", false),
					CreateTestCartItem(2, 2, "25", false),
				}, nil)
				rates.On("GetExchangeRate", mock.Anything, "SOL", "USD").Return(decimal.NewFromInt(100), nil)
				repo.On("CreateOrders", mock.Anything, mock.AnythingOfType("[]*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
					for i, o := range args.Get(1).([]*domain.Order) {
						o.ID = uint64(i + 1)
					}
				})
				carts.On("ClearCustomer", mock.Anything, TestCustomerID).Return(nil)
				pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			check: func(t *testing.T, orders []*domain.Order) {
				assert.Len(t, orders, 1)
				o := orders[0]
				// $50 + 2×$25 at $100/SOL pins a 1 SOL total.
				assert.True(t, o.Total.Equal(decimal.NewFromInt(1)), "total = %s", o.Total)
				assert.Equal(t, domain.StatusPending, o.Status)
				assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
				assert.Len(t, o.Items, 2)
				assert.True(t, o.MerchantAmount.LessThan(o.Total))
				assert.NotEmpty(t, o.OrderNumber)
			},
		},
		{
			name: "USDC settles one-to-one with USD",
			input: CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencyUSDC,
				FulfillmentType: domain.FulfillmentShipping,
			},
			setupMocks: func(repo *mocks.MockOrderRepository, carts *mocks.MockCartRepository, rates *mocks.MockRateSource, pub *mocks.MockPublisher) {
				carts.On("FindByCustomer", mock.Anything, TestCustomerID).Return([]domain.CartItem{
					CreateTestCartItem(1, 1, "49.99", false),
				}, nil)
				repo.On("CreateOrders", mock.Anything, mock.AnythingOfType("[]*domain.Order")).Return(nil)
				carts.On("ClearCustomer", mock.Anything, TestCustomerID).Return(nil)
				pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			check: func(t *testing.T, orders []*domain.Order) {
				assert.Len(t, orders, 1)
				assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("49.99")))
			},
		},
		{
			name: "one order per store",
			input: CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencyUSDC,
				FulfillmentType: domain.FulfillmentShipping,
			},
			setupMocks: func(repo *mocks.MockOrderRepository, carts *mocks.MockCartRepository, rates *mocks.MockRateSource, pub *mocks.MockPublisher) {
				itemA := CreateTestCartItem(1, 1, "10", false)
				itemB := CreateTestCartItem(2, 1, "20", false)
				itemB.Product.StoreID = TestStoreID + 1
				carts.On("FindByCustomer", mock.Anything, TestCustomerID).Return([]domain.CartItem{itemA, itemB}, nil)
				repo.On("CreateOrders", mock.Anything, mock.AnythingOfType("[]*domain.Order")).Return(nil)
				carts.On("ClearCustomer", mock.Anything, TestCustomerID).Return(nil)
				pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			check: func(t *testing.T, orders []*domain.Order) {
				assert.Len(t, orders, 2)
				assert.NotEqual(t, orders[0].StoreID, orders[1].StoreID)
				assert.NotEqual(t, orders[0].OrderNumber, orders[1].OrderNumber)
			},
		},
		{
			name: "empty cart",
			input: CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencySOL,
				FulfillmentType: domain.FulfillmentShipping,
			},
			setupMocks: func(repo *mocks.MockOrderRepository, carts *mocks.MockCartRepository, rates *mocks.MockRateSource, pub *mocks.MockPublisher) {
				carts.On("FindByCustomer", mock.Anything, TestCustomerID).Return([]domain.CartItem{}, nil)
			},
			expectedError: domain.ErrEmptyCart,
		},
		{
			name: "pickup with no pickup-capable item",
			input: CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencySOL,
				FulfillmentType: domain.FulfillmentPickup,
			},
			setupMocks: func(repo *mocks.MockOrderRepository, carts *mocks.MockCartRepository, rates *mocks.MockRateSource, pub *mocks.MockPublisher) {
				carts.On("FindByCustomer", mock.Anything, TestCustomerID).Return([]domain.CartItem{
					CreateTestCartItem(1, 1, "50", false),
				}, nil)
			},
			expectedError: domain.ErrInvalidFulfillment,
		},
		{
			name: "pickup allowed when an item supports it",
			input: CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencyUSDC,
				FulfillmentType: domain.FulfillmentPickup,
				PickupNotes:     "Saturday market stall",
			},
			setupMocks: func(repo *mocks.MockOrderRepository, carts *mocks.MockCartRepository, rates *mocks.MockRateSource, pub *mocks.MockPublisher) {
				carts.On("FindByCustomer", mock.Anything, TestCustomerID).Return([]domain.CartItem{
					CreateTestCartItem(1, 1, "50", true),
				}, nil)
				repo.On("CreateOrders", mock.Anything, mock.AnythingOfType("[]*domain.Order")).Return(nil)
				carts.On("ClearCustomer", mock.Anything, TestCustomerID).Return(nil)
				pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			check: func(t *testing.T, orders []*domain.Order) {
				assert.Equal(t, "Saturday market stall", orders[0].PickupNotes)
			},
		},
		{
			name: "below minimum",
			input: CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencyUSDC,
				FulfillmentType: domain.FulfillmentShipping,
			},
			setupMocks: func(repo *mocks.MockOrderRepository, carts *mocks.MockCartRepository, rates *mocks.MockRateSource, pub *mocks.MockPublisher) {
				carts.On("FindByCustomer", mock.Anything, TestCustomerID).Return([]domain.CartItem{
					CreateTestCartItem(1, 1, "0.50", false),
				}, nil)
			},
			expectedError: domain.ErrBelowMinimum,
		},
		{
			name: "insufficient stock from repository",
			input: CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencyUSDC,
				FulfillmentType: domain.FulfillmentShipping,
			},
			setupMocks: func(repo *mocks.MockOrderRepository, carts *mocks.MockCartRepository, rates *mocks.MockRateSource, pub *mocks.MockPublisher) {
				carts.On("FindByCustomer", mock.Anything, TestCustomerID).Return([]domain.CartItem{
					CreateTestCartItem(1, 3, "50", false),
				}, nil)
				repo.On("CreateOrders", mock.Anything, mock.AnythingOfType("[]*domain.Order")).
					Return(fmt.Errorf("%w: product 1", domain.ErrInsufficientStock))
			},
			expectedError: domain.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			mockCarts := new(mocks.MockCartRepository)
			mockRates := new(mocks.MockRateSource)
			mockPub := new(mocks.MockPublisher)

			tt.setupMocks(mockRepo, mockCarts, mockRates, mockPub)

			service := NewOrderService(mockRepo, mockCarts, mockRates, mockPub, testPolicy())

			orders, err := service.CreateOrder(context.Background(), TestCustomerID, tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, orders)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, orders)
				if tt.check != nil {
					tt.check(t, orders)
				}
			}

			time.Sleep(50 * time.Millisecond)

			mockRepo.AssertExpectations(t)
			mockCarts.AssertExpectations(t)
			mockRates.AssertExpectations(t)
			mockPub.AssertExpectations(t)
		})
	}
}

func TestOrderService_MarkPaid(t *testing.T) {
	t.Run("first completion publishes order.paid", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockPub := new(mocks.MockPublisher)

		paid := CreateTestOrder(TestOrderID, "1.5", domain.CurrencySOL, domain.PaymentCompleted)

		mockRepo.On("MarkPaid", mock.Anything, TestOrderID, TestSignature, mock.Anything, mock.Anything).Return(true, nil)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(paid, nil)
		mockPub.On("Publish", mock.Anything, "order.paid", mock.Anything).Return(nil).Maybe()

		service := NewOrderService(mockRepo, new(mocks.MockCartRepository), new(mocks.MockRateSource), mockPub, testPolicy())

		order, err := service.MarkPaid(context.Background(), TestOrderID, TestSignature, decimal.RequireFromString("1.5"))
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, order.PaymentStatus)

		time.Sleep(50 * time.Millisecond)
		mockRepo.AssertExpectations(t)
	})

	t.Run("second completion returns existing order without republishing", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockPub := new(mocks.MockPublisher)

		paid := CreateTestOrder(TestOrderID, "1.5", domain.CurrencySOL, domain.PaymentCompleted)

		mockRepo.On("MarkPaid", mock.Anything, TestOrderID, TestSignature, mock.Anything, mock.Anything).Return(false, nil)
		mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(paid, nil)

		service := NewOrderService(mockRepo, new(mocks.MockCartRepository), new(mocks.MockRateSource), mockPub, testPolicy())

		order, err := service.MarkPaid(context.Background(), TestOrderID, TestSignature, decimal.RequireFromString("1.5"))
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, order.PaymentStatus)

		time.Sleep(50 * time.Millisecond)
		mockPub.AssertNotCalled(t, "Publish", mock.Anything, "order.paid", mock.Anything)
	})

	t.Run("unknown order", func(t *testing.T) {
		mockRepo := new(mocks.MockOrderRepository)
		mockRepo.On("MarkPaid", mock.Anything, uint64(999), TestSignature, mock.Anything, mock.Anything).Return(false, nil)
		mockRepo.On("FindByID", mock.Anything, uint64(999)).Return(nil, nil)

		service := NewOrderService(mockRepo, new(mocks.MockCartRepository), new(mocks.MockRateSource), new(mocks.MockPublisher), testPolicy())

		order, err := service.MarkPaid(context.Background(), 999, TestSignature, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.Nil(t, order)
	})
}

// stockTrackingRepo mimics the conditional decrement the gorm repository
// performs, so the race between concurrent checkouts is observable.
type stockTrackingRepo struct {
	mu    sync.Mutex
	stock int64
}

func (r *stockTrackingRepo) CreateOrders(ctx context.Context, orders []*domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var need int64
	for _, o := range orders {
		for _, it := range o.Items {
			need += it.Quantity
		}
	}
	if r.stock < need {
		return fmt.Errorf("%w: product 1", domain.ErrInsufficientStock)
	}
	r.stock -= need
	return nil
}

func (r *stockTrackingRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	return nil, nil
}

func (r *stockTrackingRepo) FindByCustomer(ctx context.Context, customerID uint64) ([]domain.Order, error) {
	return nil, nil
}

func (r *stockTrackingRepo) MarkPaid(ctx context.Context, id uint64, sig string, amount decimal.Decimal, paidAt time.Time) (bool, error) {
	return false, nil
}

func (r *stockTrackingRepo) MarkFailed(ctx context.Context, id uint64, reason string) error {
	return nil
}

var _ repository.OrderRepository = (*stockTrackingRepo)(nil)

func TestOrderService_StockNeverOversold(t *testing.T) {
	const attempts = 8

	repo := &stockTrackingRepo{stock: 1}

	mockCarts := new(mocks.MockCartRepository)
	mockCarts.On("FindByCustomer", mock.Anything, mock.AnythingOfType("uint64")).Return([]domain.CartItem{
		CreateTestCartItem(1, 1, "50", false),
	}, nil)
	mockCarts.On("ClearCustomer", mock.Anything, mock.AnythingOfType("uint64")).Return(nil).Maybe()

	mockPub := new(mocks.MockPublisher)
	mockPub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()

	service := NewOrderService(repo, mockCarts, new(mocks.MockRateSource), mockPub, testPolicy())

	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes, stockFailures int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := service.CreateOrder(context.Background(), uint64(100+n), CheckoutInput{
				Email:           "buyer@flaunt.lol",
				Currency:        domain.CurrencyUSDC,
				FulfillmentType: domain.FulfillmentShipping,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInsufficientStock):
				stockFailures++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, stockFailures)
}
