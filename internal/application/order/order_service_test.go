package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Save(ctx context.Context, entity *order.Order) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithStock(ctx context.Context, entity *order.Order, levels []order.StockLevel) error {
	args := m.Called(ctx, entity, levels)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindCreatedBetween(ctx context.Context, start, end time.Time, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, start, end, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, entity *catalog.Product) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, categoryID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, threshold int, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, threshold, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newProduct(t *testing.T, price int64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("SKU-"+uuid.NewString()[:8], "Widget", uuid.New(), decimal.NewFromInt(price))
	require.NoError(t, err)
	require.NoError(t, p.AdjustStock(stock))
	return p
}

func TestOrderServiceCreate(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := NewOrderService(orderRepo, productRepo)
	ctx := context.Background()

	product := newProduct(t, 50, 10)
	productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	orderRepo.On("SaveWithStock", ctx, mock.AnythingOfType("*order.Order"),
		[]order.StockLevel{{ProductID: product.ID, Quantity: 7}}).Return(nil)

	got, err := service.Create(ctx, CreateOrderRequest{
		CustomerID: uuid.New().String(),
		Items: []OrderItemRequest{
			{ProductID: product.ID.String(), Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, 150.0, got.TotalAmount)
	assert.Equal(t, 7, product.StockQuantity)
	assert.Contains(t, got.Number, "ORD-")

	// Stock is written only through the transactional save
	productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderServiceCreateUsesDiscountedPrice(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := NewOrderService(orderRepo, productRepo)
	ctx := context.Background()

	product := newProduct(t, 100, 5)
	require.NoError(t, product.SetDiscount(decimal.NewFromInt(20)))
	productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	orderRepo.On("SaveWithStock", ctx, mock.AnythingOfType("*order.Order"), mock.Anything).Return(nil)

	got, err := service.Create(ctx, CreateOrderRequest{
		CustomerID: uuid.New().String(),
		Items:      []OrderItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.TotalAmount)
}

func TestOrderServiceCreateInsufficientStock(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := NewOrderService(orderRepo, productRepo)
	ctx := context.Background()

	product := newProduct(t, 50, 2)
	productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

	_, err := service.Create(ctx, CreateOrderRequest{
		CustomerID: uuid.New().String(),
		Items:      []OrderItemRequest{{ProductID: product.ID.String(), Quantity: 5}},
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	orderRepo.AssertNotCalled(t, "SaveWithStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderServiceCreateSaveFailure(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := NewOrderService(orderRepo, productRepo)
	ctx := context.Background()

	product := newProduct(t, 50, 10)
	productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	orderRepo.On("SaveWithStock", ctx, mock.AnythingOfType("*order.Order"), mock.Anything).
		Return(assert.AnError)

	_, err := service.Create(ctx, CreateOrderRequest{
		CustomerID: uuid.New().String(),
		Items:      []OrderItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.Error(t, err)

	// Stock was never persisted outside the failed transaction
	productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderServiceCreateInactiveProduct(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := NewOrderService(orderRepo, productRepo)
	ctx := context.Background()

	product := newProduct(t, 50, 10)
	product.Deactivate()
	productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

	_, err := service.Create(ctx, CreateOrderRequest{
		CustomerID: uuid.New().String(),
		Items:      []OrderItemRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_INACTIVE", domainErr.Code)
}

func TestOrderServiceUpdateStatus(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := NewOrderService(orderRepo, productRepo)
	ctx := context.Background()

	o, err := order.NewOrder("ORD-1", uuid.New())
	require.NoError(t, err)
	orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
	orderRepo.On("Save", ctx, o).Return(nil)

	got, err := service.UpdateStatus(ctx, o.ID, order.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, "processing", got.Status)
}

func TestOrderServiceUpdateStatusIllegalTransition(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := NewOrderService(orderRepo, productRepo)
	ctx := context.Background()

	o, err := order.NewOrder("ORD-1", uuid.New())
	require.NoError(t, err)
	orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)

	_, err = service.UpdateStatus(ctx, o.ID, order.StatusCompleted)
	require.Error(t, err)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderServiceCancelRestocks(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := NewOrderService(orderRepo, productRepo)
	ctx := context.Background()

	product := newProduct(t, 50, 10)
	o, err := order.NewOrder("ORD-1", uuid.New())
	require.NoError(t, err)
	require.NoError(t, o.AddItem(product.ID, product.Name, 4, product.Price))
	require.NoError(t, product.AdjustStock(-4))

	orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
	orderRepo.On("SaveWithStock", ctx, o,
		[]order.StockLevel{{ProductID: product.ID, Quantity: 10}}).Return(nil)
	productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

	got, err := service.UpdateStatus(ctx, o.ID, order.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.Equal(t, 10, product.StockQuantity)

	// The restock rides the same transaction as the status change
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderNumbersAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		number := generateOrderNumber()
		assert.True(t, strings.HasPrefix(number, "ORD-"), number)
		_, dup := seen[number]
		require.False(t, dup, "duplicate order number %s", number)
		seen[number] = struct{}{}
	}
}
