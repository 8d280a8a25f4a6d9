package mocks

import (
	"context"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/onramp"
	solanainfra "checkout-service/internal/infra/solana"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrders(ctx context.Context, orders []*domain.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uint64) ([]domain.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, id uint64, txSignature string, amountPaid decimal.Decimal, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, id, txSignature, amountPaid, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkFailed(ctx context.Context, id uint64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByCustomer(ctx context.Context, customerID uint64) ([]domain.CartItem, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) ClearCustomer(ctx context.Context, customerID uint64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, pattern string, data interface{}) error {
	args := m.Called(ctx, pattern, data)
	return args.Error(0)
}

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) GetExchangeRate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	args := m.Called(ctx, base, quote)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockIntentStore struct {
	mock.Mock
}

func (m *MockIntentStore) Put(ctx context.Context, intent domain.PaymentIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockIntentStore) Get(ctx context.Context, orderID uint64) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

type MockInspector struct {
	mock.Mock
}

func (m *MockInspector) InspectPayment(ctx context.Context, signature string) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}

type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) GetBalance(ctx context.Context, account solanago.PublicKey) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChainClient) AccountExists(ctx context.Context, account solanago.PublicKey) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockChainClient) GetTokenBalance(ctx context.Context, tokenAccount solanago.PublicKey) (uint64, error) {
	args := m.Called(ctx, tokenAccount)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChainClient) LatestBlockhash(ctx context.Context) (solanago.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solanago.Hash), args.Error(1)
}

func (m *MockChainClient) SignatureStatus(ctx context.Context, sig solanago.Signature) (*solanainfra.SignatureStatus, error) {
	args := m.Called(ctx, sig)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solanainfra.SignatureStatus), args.Error(1)
}

func (m *MockChainClient) FetchTransaction(ctx context.Context, sig solanago.Signature) (*solanainfra.FetchedTransaction, error) {
	args := m.Called(ctx, sig)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solanainfra.FetchedTransaction), args.Error(1)
}

func (m *MockChainClient) SendTransaction(ctx context.Context, tx *solanago.Transaction) (solanago.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solanago.Signature), args.Error(1)
}

type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) SignAndSend(ctx context.Context, tx *solanago.Transaction) (solanago.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solanago.Signature), args.Error(1)
}

type MockSessionClient struct {
	mock.Mock
}

func (m *MockSessionClient) CreateSession(ctx context.Context, req onramp.SessionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
