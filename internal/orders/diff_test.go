package orders

import (
	"testing"

	"catering/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func idPtr(id uint) *uint {
	return &id
}

func line(id uint, menuItemID *uint, name string, size models.SizeType, qty int, unit string) models.OrderItem {
	item := models.OrderItem{
		ID:         id,
		MenuItemID: menuItemID,
		ItemName:   name,
		SizeType:   size,
		Quantity:   qty,
		UnitPrice:  decimal.RequireFromString(unit),
	}
	item.ComputeTotal()
	return item
}

func ids(items []models.OrderItem) []uint {
	out := make([]uint, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestDiffItems(t *testing.T) {
	stored := []models.OrderItem{
		line(1, idPtr(10), "Chicken 65", models.SizeHalfTray, 1, "55.00"),
		line(2, idPtr(11), "Goat Curry", models.SizeFullTray, 1, "150.00"),
		line(3, idPtr(11), "Goat Curry", models.SizeHalfTray, 2, "80.00"),
		line(4, nil, "Extra Raita", models.SizePlate, 10, "1.00"),
	}

	tests := []struct {
		name       string
		incoming   []models.OrderItem
		wantDelete []uint
		wantUpdate []uint
		wantInsert int
	}{
		{
			name:       "unchanged",
			incoming:   stored,
			wantDelete: []uint{},
			wantUpdate: []uint{},
		},
		{
			name: "quantity change updates only that line",
			incoming: []models.OrderItem{
				line(0, idPtr(10), "Chicken 65", models.SizeHalfTray, 3, "55.00"),
				line(0, idPtr(11), "Goat Curry", models.SizeFullTray, 1, "150.00"),
				line(0, idPtr(11), "Goat Curry", models.SizeHalfTray, 2, "80.00"),
				line(0, nil, "extra raita ", models.SizePlate, 10, "1.00"),
			},
			wantDelete: []uint{},
			wantUpdate: []uint{1},
		},
		{
			name: "same item in a new size is an insert plus a delete",
			incoming: []models.OrderItem{
				line(0, idPtr(10), "Chicken 65", models.SizeFullTray, 1, "100.00"),
				line(0, idPtr(11), "Goat Curry", models.SizeFullTray, 1, "150.00"),
				line(0, idPtr(11), "Goat Curry", models.SizeHalfTray, 2, "80.00"),
				line(0, nil, "Extra Raita", models.SizePlate, 10, "1.00"),
			},
			wantDelete: []uint{1},
			wantUpdate: []uint{},
			wantInsert: 1,
		},
		{
			name:       "empty incoming deletes everything",
			incoming:   nil,
			wantDelete: []uint{1, 2, 3, 4},
			wantUpdate: []uint{},
		},
		{
			name: "instructions alone count as a change",
			incoming: []models.OrderItem{
				line(0, idPtr(10), "Chicken 65", models.SizeHalfTray, 1, "55.00"),
				line(0, idPtr(11), "Goat Curry", models.SizeFullTray, 1, "150.00"),
				func() models.OrderItem {
					item := line(0, idPtr(11), "Goat Curry", models.SizeHalfTray, 2, "80.00")
					item.SpecialInstructions = "extra spicy"
					return item
				}(),
			},
			wantDelete: []uint{4},
			wantUpdate: []uint{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := DiffItems(stored, tt.incoming)
			assert.Equal(t, tt.wantDelete, ids(diff.Delete))
			assert.Equal(t, tt.wantUpdate, ids(diff.Update))
			assert.Len(t, diff.Insert, tt.wantInsert)
			for _, item := range diff.Insert {
				assert.Zero(t, item.ID)
			}
		})
	}
}

func TestDiffItemsDropsStoredDuplicates(t *testing.T) {
	stored := []models.OrderItem{
		line(1, idPtr(10), "Chicken 65", models.SizeHalfTray, 1, "55.00"),
		line(2, idPtr(10), "Chicken 65", models.SizeHalfTray, 1, "55.00"),
	}
	incoming := []models.OrderItem{
		line(0, idPtr(10), "Chicken 65", models.SizeHalfTray, 1, "55.00"),
	}

	diff := DiffItems(stored, incoming)
	assert.Equal(t, []uint{2}, ids(diff.Delete))
	assert.Empty(t, diff.Update)
	assert.Empty(t, diff.Insert)
}

func TestDiffItemsEmpty(t *testing.T) {
	assert.True(t, DiffItems(nil, nil).Empty())
	assert.False(t, DiffItems(nil, []models.OrderItem{line(0, nil, "Naan", models.SizePlate, 1, "2.00")}).Empty())
}
