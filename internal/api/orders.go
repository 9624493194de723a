package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"catering/internal/events"
	"catering/internal/export"
	"catering/internal/logger"
	"catering/internal/models"
	"catering/internal/notify"
	"catering/internal/orders"
	"catering/internal/reporting"
	"catering/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type orderItemRequest struct {
	MenuItemID          *uint           `json:"menu_item_id"`
	ItemName            string          `json:"item_name"`
	SizeType            models.SizeType `json:"size_type"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	SpecialInstructions string          `json:"special_instructions"`
}

// orderRequest is the body of order create and update. Amounts are derived
// from the lines and never read from the client.
type orderRequest struct {
	CustomerName        string              `json:"customer_name"`
	CustomerPhone       string              `json:"customer_phone"`
	DeliveryDate        string              `json:"delivery_date"`
	DeliveryTime        string              `json:"delivery_time"`
	SpecialInstructions string              `json:"special_instructions"`
	Status              models.OrderStatus  `json:"status"`
	DiscountType        models.DiscountType `json:"discount_type"`
	DiscountValue       decimal.Decimal     `json:"discount_value"`
	TipAmount           decimal.Decimal     `json:"tip_amount"`
	Items               []orderItemRequest  `json:"items"`
}

func (r *orderRequest) toOrder() *models.Order {
	order := &models.Order{
		CustomerName:        r.CustomerName,
		CustomerPhone:       r.CustomerPhone,
		DeliveryDate:        r.DeliveryDate,
		DeliveryTime:        r.DeliveryTime,
		SpecialInstructions: r.SpecialInstructions,
		Status:              r.Status,
		DiscountType:        r.DiscountType,
		DiscountValue:       r.DiscountValue,
		TipAmount:           r.TipAmount,
		Items:               make([]models.OrderItem, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID:          item.MenuItemID,
			ItemName:            item.ItemName,
			SizeType:            item.SizeType,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return order
}

// orderFilter reads status, q and an optional reporting period from the
// query string. The period is applied with the same date rule the reports
// use, so it is returned separately.
func (s *Server) orderFilter(c *gin.Context) (store.OrderFilter, *reporting.DateRange, error) {
	filter := store.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Query:  c.Query("q"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, nil, fmt.Errorf("%w %q", orders.ErrUnknownStatus, filter.Status)
	}
	period := c.Query("period")
	if period == "" {
		return filter, nil, nil
	}
	r, err := reporting.ResolveDateRange(reporting.Period(period), s.now().In(s.loc), c.Query("start"), c.Query("end"))
	if err != nil {
		return filter, nil, err
	}
	return filter, &r, nil
}

func (s *Server) listOrders(c *gin.Context) ([]models.Order, error) {
	filter, r, err := s.orderFilter(c)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListOrders(c.Request.Context(), filter)
	if err != nil {
		return nil, err
	}
	if r != nil {
		list = reporting.Filter(list, *r, "")
	}
	return list, nil
}

func (s *Server) ListOrders(c *gin.Context) {
	list, err := s.listOrders(c)
	if err != nil {
		s.fail(c, "load orders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) GetOrder(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "load order", err)
		return
	}
	order, err := s.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "load order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "create order", err)
		return
	}

	order, err := s.writer.Create(c.Request.Context(), req.toOrder())
	if err != nil {
		s.orderWriteFailed(c, "create", err)
		return
	}

	s.orderWritten(c, "create", events.OrderCreated, order)
	s.metrics.RecordOrderValue(order.TotalAmount.InexactFloat64())
	c.JSON(http.StatusCreated, order)
}

// UpdateOrder replaces the order header and reconciles its lines. The
// response carries the reloaded order and how many lines were touched.
func (s *Server) UpdateOrder(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "update order", err)
		return
	}
	var req orderRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "update order", err)
		return
	}

	order, diff, err := s.writer.Update(c.Request.Context(), id, req.toOrder())
	if err != nil {
		s.orderWriteFailed(c, "update", err)
		return
	}

	s.orderWritten(c, "update", events.OrderUpdated, order)
	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"changes": gin.H{
			"deleted":  len(diff.Delete),
			"updated":  len(diff.Update),
			"inserted": len(diff.Insert),
		},
	})
}

func (s *Server) DeleteOrder(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "delete order", err)
		return
	}
	order, err := s.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "delete order", err)
		return
	}
	if err := s.writer.Delete(c.Request.Context(), id); err != nil {
		s.orderWriteFailed(c, "delete", err)
		return
	}

	s.orderWritten(c, "delete", events.OrderDeleted, order)
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "update order status", err)
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "update order status", err)
		return
	}

	order, err := s.writer.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		s.orderWriteFailed(c, "update_status", err)
		return
	}

	s.orderWritten(c, "update_status", events.OrderStatusChanged, order)
	c.JSON(http.StatusOK, order)
}

// OrderReceipt renders the printable receipt page
func (s *Server) OrderReceipt(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "render receipt", err)
		return
	}
	order, err := s.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "render receipt", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Receipt(&buf, order, s.business()); err != nil {
		s.fail(c, "render receipt", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// OrderWhatsApp returns a link that opens a chat with the customer with the
// order confirmation prefilled.
func (s *Server) OrderWhatsApp(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "build WhatsApp link", err)
		return
	}
	order, err := s.store.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "build WhatsApp link", err)
		return
	}

	message := notify.OrderMessage(s.cfg.WhatsApp.BusinessName, order)
	link, err := notify.WhatsAppLink(order.CustomerPhone, message)
	if err != nil {
		s.fail(c, "build WhatsApp link", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link, "message": message})
}

// ExportOrders downloads the filtered orders as CSV (default) or XLSX
func (s *Server) ExportOrders(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		s.fail(c, "export orders", &badRequest{err: fmt.Errorf("unsupported export format %q", format)})
		return
	}

	list, err := s.listOrders(c)
	if err != nil {
		s.fail(c, "export orders", err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, list)
	} else {
		err = export.WriteCSV(&buf, list)
	}
	if err != nil {
		s.fail(c, "export orders", err)
		return
	}

	filename := fmt.Sprintf("orders-%s.%s", strings.ReplaceAll(s.today(), "-", ""), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// orderWritten records a successful order write and tells listeners
func (s *Server) orderWritten(c *gin.Context, op string, t events.Type, order *models.Order) {
	s.metrics.RecordOrderWrite(op)
	s.monitor.RecordActivity("order", op, map[string]interface{}{
		"id":     order.ID,
		"number": order.OrderNumber,
		"total":  order.TotalAmount.StringFixed(2),
	})
	s.publish(c, events.OrderEvent(t, order, logger.RequestID(c.Request.Context())))
}

func (s *Server) orderWriteFailed(c *gin.Context, op string, err error) {
	var we *orders.WriteError
	if errors.As(err, &we) {
		s.metrics.RecordOrderWriteFailure(op, string(we.Step))
	} else {
		s.metrics.RecordOrderWriteFailure(op, "unknown")
	}
	s.monitor.Increment("order_" + op + "_failed_count")
	s.fail(c, strings.ReplaceAll(op, "_", " ")+" order", err)
}

// publish is best effort; a broker outage never fails the request
func (s *Server) publish(c *gin.Context, event events.Event) {
	if err := s.publisher.Publish(c.Request.Context(), event); err != nil {
		s.log.Warn(event.RequestID, "publish_failed", fmt.Sprintf("failed to publish %s: %v", event.Type, err))
	}
}

func (s *Server) business() export.Business {
	return export.Business{
		Name:  s.cfg.WhatsApp.BusinessName,
		Phone: s.cfg.WhatsApp.Phone,
	}
}
