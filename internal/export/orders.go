package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"catering/internal/models"

	"github.com/xuri/excelize/v2"
)

var itemHeader = []string{
	"order_number", "customer_name", "customer_phone", "delivery_date", "delivery_time", "status",
	"item_name", "size", "quantity", "unit_price", "total_price", "order_total",
}

var orderHeader = []string{
	"order_number", "customer_name", "customer_phone", "delivery_date", "delivery_time", "status",
	"items", "subtotal", "discount", "tip", "total", "amount_due",
}

func itemRows(orders []models.Order) [][]string {
	var rows [][]string
	for _, order := range orders {
		for _, item := range order.Items {
			rows = append(rows, []string{
				order.OrderNumber,
				order.CustomerName,
				order.CustomerPhone,
				order.DeliveryDate,
				order.DeliveryTime,
				string(order.Status),
				item.ItemName,
				item.SizeType.Label(),
				strconv.Itoa(item.Quantity),
				item.UnitPrice.StringFixed(2),
				item.TotalPrice.StringFixed(2),
				order.TotalAmount.StringFixed(2),
			})
		}
	}
	return rows
}

// WriteCSV writes one row per order line
func WriteCSV(w io.Writer, orders []models.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(itemHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(itemRows(orders)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with an Orders sheet, one row per order, and an
// Items sheet, one row per line.
func WriteXLSX(w io.Writer, orders []models.Order) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", "Orders"); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet("Items"); err != nil {
		return fmt.Errorf("failed to add items sheet: %w", err)
	}

	if err := setRow(f, "Orders", 1, toCells(orderHeader)); err != nil {
		return err
	}
	for i, order := range orders {
		row := []interface{}{
			order.OrderNumber,
			order.CustomerName,
			order.CustomerPhone,
			order.DeliveryDate,
			order.DeliveryTime,
			string(order.Status),
			len(order.Items),
			order.SubtotalAmount.InexactFloat64(),
			order.DiscountAmount.InexactFloat64(),
			order.TipAmount.InexactFloat64(),
			order.TotalAmount.InexactFloat64(),
			order.AmountDue().InexactFloat64(),
		}
		if err := setRow(f, "Orders", i+2, row); err != nil {
			return err
		}
	}

	if err := setRow(f, "Items", 1, toCells(itemHeader)); err != nil {
		return err
	}
	for i, row := range itemRows(orders) {
		if err := setRow(f, "Items", i+2, toCells(row)); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
