package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"catering/internal/database"
	"catering/internal/logger"
	"catering/internal/models"
	"catering/internal/store"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (*Writer, *store.Store, *gorm.DB) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Seed(db))

	s := store.New(db)
	w := NewWriter(s, logger.Discard(), time.UTC)
	w.now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }
	return w, s, db
}

func seededItem(t *testing.T, s *store.Store, query string) models.MenuItem {
	t.Helper()
	items, err := s.ListMenuItems(context.Background(), store.MenuItemFilter{Query: query})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	return items[0]
}

func assertTotalMatchesLines(t *testing.T, order *models.Order) {
	t.Helper()
	sum := decimal.Zero
	for _, item := range order.Items {
		assert.True(t, item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
			"line %s total", item.ItemName)
		sum = sum.Add(item.TotalPrice)
	}
	assert.True(t, sum.Equal(order.TotalAmount), "total %s, lines sum to %s", order.TotalAmount, sum)
	assert.True(t, sum.Equal(order.SubtotalAmount))
}

func TestCreateUpdateExample(t *testing.T) {
	w, s, _ := newTestWriter(t)
	ctx := context.Background()

	paneer := seededItem(t, s, "Paneer")
	chicken := seededItem(t, s, "Chicken 65")

	created, err := w.Create(ctx, &models.Order{
		CustomerName:  "Asha Rao",
		CustomerPhone: "555-010-2000",
		DeliveryDate:  "2026-10-25",
		DeliveryTime:  "18:30",
		Items: []models.OrderItem{
			{MenuItemID: &paneer.ID, ItemName: "Paneer Butter Masala", SizeType: models.SizePlate, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{MenuItemID: &chicken.ID, ItemName: "Chicken 65", SizeType: models.SizeHalfTray, Quantity: 1, UnitPrice: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD_20261019_001", created.OrderNumber)
	assert.Equal(t, models.OrderStatusReceived, created.Status)
	require.NotNil(t, created.CustomerID)
	require.Len(t, created.Items, 2)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(50)))
	assertTotalMatchesLines(t, created)

	updated, diff, err := w.Update(ctx, created.ID, &models.Order{
		CustomerName:  "Asha Rao",
		CustomerPhone: "555-010-2000",
		DeliveryDate:  "2026-10-25",
		DeliveryTime:  "18:30",
		Items: []models.OrderItem{
			{MenuItemID: &chicken.ID, ItemName: "Chicken 65", SizeType: models.SizeHalfTray, Quantity: 2, UnitPrice: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)

	require.Len(t, diff.Delete, 1)
	assert.Equal(t, paneer.ID, *diff.Delete[0].MenuItemID)
	require.Len(t, diff.Update, 1)
	assert.Equal(t, created.Items[1].ID, diff.Update[0].ID)
	assert.Empty(t, diff.Insert)

	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(60)))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 2, updated.Items[0].Quantity)
	assertTotalMatchesLines(t, updated)
}

func TestCreateFillsLinesFromMenu(t *testing.T) {
	w, s, _ := newTestWriter(t)
	ctx := context.Background()

	goat := seededItem(t, s, "Goat")
	samosa := seededItem(t, s, "Samosa")

	order, err := w.Create(ctx, &models.Order{
		CustomerName: "Walk-in",
		Items: []models.OrderItem{
			{MenuItemID: &goat.ID, SizeType: models.SizeFullTray, Quantity: 1},
			{MenuItemID: &samosa.ID, SizeType: models.SizePiece, Quantity: 30},
		},
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		TipAmount:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID, "no phone, no customer")
	assert.Equal(t, "Goat Curry", order.Items[0].ItemName)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(150)))
	assert.True(t, order.Items[1].TotalPrice.Equal(decimal.RequireFromString("45")))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(195)))
	assert.True(t, order.DiscountAmount.Equal(decimal.RequireFromString("19.5")))
	assert.True(t, order.AmountDue().Equal(decimal.RequireFromString("180.5")))

	_, err = w.Create(ctx, &models.Order{
		CustomerName: "Walk-in",
		Items:        []models.OrderItem{{MenuItemID: &samosa.ID, SizeType: models.SizePiece, Quantity: 10}},
	})
	assert.ErrorIs(t, err, ErrInvalidOrder, "below minimum piece order")

	_, err = w.Create(ctx, &models.Order{
		CustomerName: "Walk-in",
		Items:        []models.OrderItem{{MenuItemID: &goat.ID, SizeType: models.SizePlate, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidOrder, "goat curry is not sold by the plate")
}

func TestCreateValidation(t *testing.T) {
	w, _, _ := newTestWriter(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		order models.Order
	}{
		{"no items", models.Order{CustomerName: "A"}},
		{"no name", models.Order{Items: []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 1}}}},
		{"bad size", models.Order{CustomerName: "A", Items: []models.OrderItem{{ItemName: "Naan", SizeType: "bucket", Quantity: 1}}}},
		{"zero quantity", models.Order{CustomerName: "A", Items: []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate}}}},
		{"bad date", models.Order{CustomerName: "A", DeliveryDate: "25/10/2026", Items: []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 1}}}},
		{"duplicate line", models.Order{CustomerName: "A", Items: []models.OrderItem{
			{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 1},
			{ItemName: "naan", SizeType: models.SizePlate, Quantity: 2},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Create(ctx, &tt.order)
			assert.ErrorIs(t, err, ErrInvalidOrder)
			var writeErr *WriteError
			require.True(t, errors.As(err, &writeErr))
			assert.Equal(t, StepValidate, writeErr.Step)
		})
	}
}

func TestOrderNumbersIncreasePerDay(t *testing.T) {
	w, _, _ := newTestWriter(t)
	ctx := context.Background()

	draft := func() *models.Order {
		return &models.Order{
			CustomerName: "Dev",
			Items:        []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 4, UnitPrice: decimal.NewFromInt(2)}},
		}
	}

	first, err := w.Create(ctx, draft())
	require.NoError(t, err)
	second, err := w.Create(ctx, draft())
	require.NoError(t, err)
	assert.Equal(t, "ORD_20261019_001", first.OrderNumber)
	assert.Equal(t, "ORD_20261019_002", second.OrderNumber)

	w.now = func() time.Time { return time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC) }
	third, err := w.Create(ctx, draft())
	require.NoError(t, err)
	assert.Equal(t, "ORD_20261020_001", third.OrderNumber)
}

func naanDraft(name string) *models.Order {
	return &models.Order{
		CustomerName: name,
		Items:        []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 4, UnitPrice: decimal.NewFromInt(2)}},
	}
}

func TestCreateRetriesTakenOrderNumber(t *testing.T) {
	w, _, db := newTestWriter(t)
	ctx := context.Background()

	first, err := w.Create(ctx, naanDraft("Dev"))
	require.NoError(t, err)
	require.Equal(t, "ORD_20261019_001", first.OrderNumber)

	// the first lookup misses the committed order, as a concurrent
	// transaction would
	lookups := 0
	w.lastNumber = func(ctx context.Context, tx *store.Store, prefix string) (string, error) {
		lookups++
		if lookups == 1 {
			return "", nil
		}
		return tx.LastOrderNumber(ctx, prefix)
	}

	second, err := w.Create(ctx, naanDraft("Mira"))
	require.NoError(t, err)
	assert.Equal(t, 2, lookups)
	assert.Equal(t, "ORD_20261019_002", second.OrderNumber)
	require.Len(t, second.Items, 1)

	var items int
	db.Model(&models.OrderItem{}).Count(&items)
	assert.Equal(t, 2, items)
}

func TestCreateGivesUpWhenNumbersKeepColliding(t *testing.T) {
	w, _, db := newTestWriter(t)
	ctx := context.Background()

	_, err := w.Create(ctx, naanDraft("Dev"))
	require.NoError(t, err)

	w.lastNumber = func(context.Context, *store.Store, string) (string, error) {
		return "", nil
	}
	_, err = w.Create(ctx, naanDraft("Mira"))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConflict)
	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, StepInsertOrder, writeErr.Step)

	var orders int
	db.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, 1, orders)
}

func TestOrderNumberSequencePastThreeDigits(t *testing.T) {
	w, s, _ := newTestWriter(t)
	ctx := context.Background()

	for _, number := range []string{"ORD_20261019_999", "ORD_20261019_1000"} {
		require.NoError(t, s.InsertOrder(ctx, &models.Order{
			OrderNumber:  number,
			CustomerName: "Backfill",
			Status:       models.OrderStatusPaid,
		}))
	}

	order, err := w.Create(ctx, naanDraft("Dev"))
	require.NoError(t, err)
	assert.Equal(t, "ORD_20261019_1001", order.OrderNumber)
}

func TestUpdateRelinksCustomerOnPhoneChange(t *testing.T) {
	w, s, _ := newTestWriter(t)
	ctx := context.Background()

	draft := naanDraft("Asha")
	draft.CustomerPhone = "555-111-2222"
	created, err := w.Create(ctx, draft)
	require.NoError(t, err)
	require.NotNil(t, created.CustomerID)
	asha := *created.CustomerID

	edit := naanDraft("Ravi")
	edit.CustomerPhone = "555-999-0000"
	updated, _, err := w.Update(ctx, created.ID, edit)
	require.NoError(t, err)
	require.NotNil(t, updated.CustomerID)
	assert.NotEqual(t, asha, *updated.CustomerID)

	ravi, err := s.GetCustomer(ctx, *updated.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", ravi.Name)
	assert.Equal(t, "5559990000", ravi.Phone)

	ashaOrders, err := s.ListOrders(ctx, store.OrderFilter{CustomerID: &asha})
	require.NoError(t, err)
	assert.Empty(t, ashaOrders)

	// same digits, different formatting: the link stays
	edit.CustomerPhone = "(555) 999 0000"
	updated, _, err = w.Update(ctx, created.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, ravi.ID, *updated.CustomerID)

	edit.CustomerPhone = ""
	updated, _, err = w.Update(ctx, created.ID, edit)
	require.NoError(t, err)
	assert.Nil(t, updated.CustomerID)

	edit.CustomerName = "Asha"
	edit.CustomerPhone = "5551112222"
	updated, _, err = w.Update(ctx, created.ID, edit)
	require.NoError(t, err)
	require.NotNil(t, updated.CustomerID)
	assert.Equal(t, asha, *updated.CustomerID)
}

func TestCreateRollsBackOnItemFailure(t *testing.T) {
	w, s, db := newTestWriter(t)
	ctx := context.Background()

	require.NoError(t, db.DropTable(&models.OrderItem{}).Error)

	_, err := w.Create(ctx, &models.Order{
		CustomerName:  "Lena",
		CustomerPhone: "555 333 4444",
		Items:         []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 1, UnitPrice: decimal.NewFromInt(2)}},
	})
	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, StepInsertItems, writeErr.Step)
	assert.Equal(t, "create", writeErr.Op)

	var orders, customers int
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.Customer{}).Count(&customers)
	assert.Zero(t, orders)
	assert.Zero(t, customers)

	_, err = s.FindCustomerByPhone(ctx, "5553334444")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateInsertsNewLineAndKeepsUnchanged(t *testing.T) {
	w, _, _ := newTestWriter(t)
	ctx := context.Background()

	naan := models.OrderItem{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 4, UnitPrice: decimal.NewFromInt(2)}
	created, err := w.Create(ctx, &models.Order{CustomerName: "Dev", Items: []models.OrderItem{naan}})
	require.NoError(t, err)

	raita := models.OrderItem{ItemName: "Raita", SizeType: models.SizePlate, Quantity: 4, UnitPrice: decimal.NewFromInt(1)}
	updated, diff, err := w.Update(ctx, created.ID, &models.Order{
		CustomerName: "Dev",
		Status:       models.OrderStatusDelivered,
		Items:        []models.OrderItem{naan, raita},
	})
	require.NoError(t, err)
	assert.Empty(t, diff.Delete)
	assert.Empty(t, diff.Update)
	assert.Len(t, diff.Insert, 1)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, created.Items[0].ID, updated.Items[0].ID)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)
	assert.Equal(t, created.OrderNumber, updated.OrderNumber)
	assertTotalMatchesLines(t, updated)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(12)))
}

func TestUpdateMissingOrder(t *testing.T) {
	w, _, _ := newTestWriter(t)

	_, _, err := w.Update(context.Background(), 404, &models.Order{
		CustomerName: "Nobody",
		Items:        []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 1}},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteRemovesItems(t *testing.T) {
	w, s, db := newTestWriter(t)
	ctx := context.Background()

	created, err := w.Create(ctx, &models.Order{
		CustomerName: "Dev",
		Items:        []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 4, UnitPrice: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)

	require.NoError(t, w.Delete(ctx, created.ID))

	_, err = s.GetOrder(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	var items int
	db.Model(&models.OrderItem{}).Where("order_id = ?", created.ID).Count(&items)
	assert.Zero(t, items)

	assert.ErrorIs(t, w.Delete(ctx, created.ID), store.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	w, _, _ := newTestWriter(t)
	ctx := context.Background()

	created, err := w.Create(ctx, &models.Order{
		CustomerName: "Dev",
		Items:        []models.OrderItem{{ItemName: "Naan", SizeType: models.SizePlate, Quantity: 1, UnitPrice: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)

	for _, status := range []models.OrderStatus{models.OrderStatusPaid, models.OrderStatusReceived, models.OrderStatusDelivered} {
		order, err := w.UpdateStatus(ctx, created.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}

	_, err = w.UpdateStatus(ctx, created.ID, "cancelled")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = w.UpdateStatus(ctx, 999, models.OrderStatusPaid)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
