package usecase

import (
	"context"
	"net/http"
	"testing"

	"hamono/internal/domain/model"
	repo "hamono/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOrderUsecase_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()

	tx, r := newFakeTx()
	addresses := new(MockAddressRepository)

	addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 1}, nil)

	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)

	r.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10, UserID: 1}, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, CartID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 12000},
	}, nil)

	r.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "三徳包丁", Price: 12000, Stock: 5, IsActive: true,
	}, nil)

	// 確定時に在庫を条件付きで減らす
	r.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)

	r.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 && o.Status == model.OrderStatusPending &&
			o.TotalPrice == 24000 && o.IdempotencyKey == "key-1"
	})).Return(int64(55), nil)

	r.orderItems.On("CreateBulk", mock.Anything, int64(55), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].ProductID == 100 &&
			items[0].UnitPriceSnapshot == 12000 && items[0].ProductNameSnapshot == "三徳包丁"
	})).Return(nil)

	// 再注文防止
	r.carts.On("UpdateStatus", mock.Anything, int64(10), model.CartStatusCheckedOut).Return(nil)
	r.carts.On("Clear", mock.Anything, int64(10)).Return(nil)

	u := NewOrderUsecase(tx, addresses)

	out, err := u.PlaceOrder(ctx, 1, PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.ID)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Equal(t, int64(24000), out.TotalPrice)
	assert.Len(t, out.Items, 1)

	r.orders.AssertExpectations(t)
	r.orderItems.AssertExpectations(t)
	r.carts.AssertExpectations(t)
	r.inventory.AssertExpectations(t)
}

// 同じキーなら既存の注文をそのまま返す（二重注文しない）
func TestOrderUsecase_PlaceOrder_IdempotentReplay(t *testing.T) {
	ctx := context.Background()

	tx, r := newFakeTx()
	addresses := new(MockAddressRepository)

	addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 1}, nil)

	existing := model.Order{ID: 55, UserID: 1, Status: model.OrderStatusPending, TotalPrice: 24000, IdempotencyKey: "key-1"}
	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(existing, true, nil)
	r.orderItems.On("ListByOrderID", mock.Anything, int64(55)).Return([]model.OrderItem{
		{OrderID: 55, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 12000, ProductNameSnapshot: "三徳包丁"},
	}, nil)

	u := NewOrderUsecase(tx, addresses)

	out, err := u.PlaceOrder(ctx, 1, PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.ID)

	// 新規作成も在庫減算も起きない
	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	r.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_OutOfStock(t *testing.T) {
	ctx := context.Background()

	tx, r := newFakeTx()
	addresses := new(MockAddressRepository)

	addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 1}, nil)
	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10}, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{
		{ID: 1, ProductID: 100, Quantity: 10, UnitPriceSnapshot: 12000},
	}, nil)
	r.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "三徳包丁", Stock: 2, IsActive: true,
	}, nil)
	r.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(10)).Return(false, nil)

	u := NewOrderUsecase(tx, addresses)

	_, err := u.PlaceOrder(ctx, 1, PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assertStatus(t, err, http.StatusBadRequest)

	r.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 他人の住所では注文できない
func TestOrderUsecase_PlaceOrder_ForeignAddress(t *testing.T) {
	ctx := context.Background()

	tx, _ := newFakeTx()
	addresses := new(MockAddressRepository)

	addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 99}, nil)

	u := NewOrderUsecase(tx, addresses)

	_, err := u.PlaceOrder(ctx, 1, PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assertStatus(t, err, http.StatusForbidden)
}

func TestOrderUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()

	tx, r := newFakeTx()
	addresses := new(MockAddressRepository)

	addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 1}, nil)
	r.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	r.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 10}, nil)
	r.cartItems.On("ListByCartID", mock.Anything, int64(10)).Return([]model.CartItem{}, nil)

	u := NewOrderUsecase(tx, addresses)

	_, err := u.PlaceOrder(ctx, 1, PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assertStatus(t, err, http.StatusBadRequest)
}

// 他人の注文詳細は存在しない扱い
func TestOrderUsecase_GetMyOrderDetail_ForeignOrder(t *testing.T) {
	ctx := context.Background()

	tx, r := newFakeTx()
	addresses := new(MockAddressRepository)

	r.orders.On("FindByID", mock.Anything, int64(55)).Return(model.Order{ID: 55, UserID: 99}, nil)

	u := NewOrderUsecase(tx, addresses)

	_, err := u.GetMyOrderDetail(ctx, 1, 55)
	assertStatus(t, err, http.StatusNotFound)
}

func TestOrderUsecase_GetMyOrderDetail_NotFound(t *testing.T) {
	ctx := context.Background()

	tx, r := newFakeTx()
	addresses := new(MockAddressRepository)

	r.orders.On("FindByID", mock.Anything, int64(404)).Return(model.Order{}, repo.ErrNotFound)

	u := NewOrderUsecase(tx, addresses)

	_, err := u.GetMyOrderDetail(ctx, 1, 404)
	assertStatus(t, err, http.StatusNotFound)
}
