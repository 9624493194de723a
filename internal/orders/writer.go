package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"catering/internal/logger"
	"catering/internal/models"
	"catering/internal/store"
)

// numberAttempts bounds how often Create picks a fresh order number after
// losing one to a concurrent create.
const numberAttempts = 3

// Writer keeps an order row and its lines consistent. Every write runs in a
// single store transaction.
type Writer struct {
	store      *store.Store
	log        *logger.Logger
	loc        *time.Location
	now        func() time.Time
	lastNumber func(ctx context.Context, tx *store.Store, prefix string) (string, error)
}

// NewWriter creates a writer. Order numbers use the calendar date in loc.
func NewWriter(s *store.Store, log *logger.Logger, loc *time.Location) *Writer {
	if loc == nil {
		loc = time.Local
	}
	return &Writer{
		store:      s,
		log:        log,
		loc:        loc,
		now:        time.Now,
		lastNumber: lastOrderNumber,
	}
}

func lastOrderNumber(ctx context.Context, tx *store.Store, prefix string) (string, error) {
	return tx.LastOrderNumber(ctx, prefix)
}

// Create stores a new order and its lines. The customer is looked up by
// phone and created when unknown; the order number is assigned here.
func (w *Writer) Create(ctx context.Context, draft *models.Order) (*models.Order, error) {
	const op = "create"

	order := *draft
	order.ID = 0
	order.OrderNumber = ""
	order.CustomerID = nil
	order.Customer = nil
	if order.Status == "" {
		order.Status = models.OrderStatusReceived
	}
	items := make([]models.OrderItem, len(draft.Items))
	copy(items, draft.Items)
	order.Items = items

	if err := w.prepare(ctx, w.store, &order); err != nil {
		return nil, w.fail(ctx, op, StepValidate, err)
	}

	lines := order.Items
	var err error
	for attempt := 1; attempt <= numberAttempts; attempt++ {
		err = w.store.Transaction(ctx, func(tx *store.Store) error {
			order.ID = 0
			order.Items = nil
			if models.NormalizePhone(order.CustomerPhone) != "" {
				customer, err := tx.FindOrCreateCustomer(ctx, order.CustomerName, order.CustomerPhone)
				if err != nil {
					return &WriteError{Op: op, Step: StepCustomer, Err: err}
				}
				order.CustomerID = &customer.ID
			}

			number, err := w.nextOrderNumber(ctx, tx)
			if err != nil {
				return &WriteError{Op: op, Step: StepNumber, Err: err}
			}
			order.OrderNumber = number

			if err := tx.InsertOrder(ctx, &order); err != nil {
				return &WriteError{Op: op, Step: StepInsertOrder, Err: err}
			}
			for i := range lines {
				lines[i].ID = 0
				lines[i].OrderID = order.ID
				if err := tx.InsertOrderItem(ctx, &lines[i]); err != nil {
					return &WriteError{Op: op, Step: StepInsertItems, Err: err}
				}
			}
			return nil
		})
		if !numberTaken(err) {
			break
		}
		w.log.Warn(logger.RequestID(ctx), "order_number_taken",
			fmt.Sprintf("order number %s was taken by a concurrent create (attempt %d)", order.OrderNumber, attempt))
	}
	order.Items = lines
	if err != nil {
		return nil, w.logged(ctx, op, err)
	}

	w.log.Info(logger.RequestID(ctx), "order_created",
		fmt.Sprintf("order %s created with %d items, total %s", order.OrderNumber, len(order.Items), order.TotalAmount.StringFixed(2)))
	return w.store.GetOrder(ctx, order.ID)
}

// Update replaces the editable header fields of an order and reconciles its
// lines with edit.Items. Only the lines that changed are written. The applied
// diff is returned with the reloaded order.
func (w *Writer) Update(ctx context.Context, id uint, edit *models.Order) (*models.Order, ItemDiff, error) {
	const op = "update"

	var diff ItemDiff
	items := make([]models.OrderItem, len(edit.Items))
	copy(items, edit.Items)
	incoming := *edit
	incoming.Items = items

	err := w.store.Transaction(ctx, func(tx *store.Store) error {
		stored, err := tx.GetOrder(ctx, id)
		if err != nil {
			return &WriteError{Op: op, Step: StepLoad, Err: err}
		}

		order := *stored
		order.CustomerName = incoming.CustomerName
		order.CustomerPhone = incoming.CustomerPhone
		order.DeliveryDate = incoming.DeliveryDate
		order.DeliveryTime = incoming.DeliveryTime
		order.SpecialInstructions = incoming.SpecialInstructions
		order.DiscountType = incoming.DiscountType
		order.DiscountValue = incoming.DiscountValue
		order.TipAmount = incoming.TipAmount
		if incoming.Status != "" {
			order.Status = incoming.Status
		}
		order.Items = incoming.Items
		for i := range order.Items {
			order.Items[i].OrderID = id
		}

		if err := w.prepare(ctx, tx, &order); err != nil {
			return &WriteError{Op: op, Step: StepValidate, Err: err}
		}
		if err := relinkCustomer(ctx, tx, stored, &order); err != nil {
			return &WriteError{Op: op, Step: StepCustomer, Err: err}
		}

		diff = DiffItems(stored.Items, order.Items)

		header := order
		header.Items = nil
		header.Customer = nil
		if err := tx.UpdateOrderHeader(ctx, &header); err != nil {
			return &WriteError{Op: op, Step: StepUpdateOrder, Err: err}
		}
		for _, item := range diff.Delete {
			if err := tx.DeleteOrderItem(ctx, item.ID); err != nil {
				return &WriteError{Op: op, Step: StepDeleteItems, Err: err}
			}
		}
		for i := range diff.Update {
			if err := tx.UpdateOrderItem(ctx, &diff.Update[i]); err != nil {
				return &WriteError{Op: op, Step: StepUpdateItems, Err: err}
			}
		}
		for i := range diff.Insert {
			diff.Insert[i].OrderID = id
			if err := tx.InsertOrderItem(ctx, &diff.Insert[i]); err != nil {
				return &WriteError{Op: op, Step: StepInsertItems, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, ItemDiff{}, w.logged(ctx, op, err)
	}

	w.log.Info(logger.RequestID(ctx), "order_updated",
		fmt.Sprintf("order %d updated: %d deleted, %d updated, %d inserted",
			id, len(diff.Delete), len(diff.Update), len(diff.Insert)))

	order, err := w.store.GetOrder(ctx, id)
	if err != nil {
		return nil, ItemDiff{}, err
	}
	return order, diff, nil
}

// Delete removes an order's lines and then the order
func (w *Writer) Delete(ctx context.Context, id uint) error {
	const op = "delete"

	err := w.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.GetOrder(ctx, id); err != nil {
			return &WriteError{Op: op, Step: StepLoad, Err: err}
		}
		if err := tx.DeleteOrderItems(ctx, id); err != nil {
			return &WriteError{Op: op, Step: StepDeleteItems, Err: err}
		}
		if err := tx.DeleteOrder(ctx, id); err != nil {
			return &WriteError{Op: op, Step: StepDeleteOrder, Err: err}
		}
		return nil
	})
	if err != nil {
		return w.logged(ctx, op, err)
	}
	w.log.Info(logger.RequestID(ctx), "order_deleted", fmt.Sprintf("order %d deleted", id))
	return nil
}

// UpdateStatus sets the order status. Any known status may follow any other.
func (w *Writer) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	const op = "update_status"

	if !status.Valid() {
		return nil, w.fail(ctx, op, StepValidate, fmt.Errorf("%w %q", ErrUnknownStatus, status))
	}
	if err := w.store.SetOrderStatus(ctx, id, status); err != nil {
		return nil, w.fail(ctx, op, StepStatus, err)
	}
	w.log.Info(logger.RequestID(ctx), "order_status_changed", fmt.Sprintf("order %d is now %s", id, status))
	return w.store.GetOrder(ctx, id)
}

// relinkCustomer points an edited order at the customer owning its phone.
// Clearing the phone unlinks the order.
func relinkCustomer(ctx context.Context, tx *store.Store, stored, order *models.Order) error {
	phone := models.NormalizePhone(order.CustomerPhone)
	if phone == "" {
		order.CustomerID = nil
		return nil
	}
	if stored.CustomerID != nil && phone == models.NormalizePhone(stored.CustomerPhone) {
		return nil
	}
	customer, err := tx.FindOrCreateCustomer(ctx, order.CustomerName, order.CustomerPhone)
	if err != nil {
		return err
	}
	order.CustomerID = &customer.ID
	return nil
}

// prepare fills line details from the menu, validates the order and
// recomputes every amount.
func (w *Writer) prepare(ctx context.Context, s *store.Store, order *models.Order) error {
	order.CustomerName = strings.TrimSpace(order.CustomerName)
	for i := range order.Items {
		if err := resolveLine(ctx, s, &order.Items[i]); err != nil {
			return invalid(fmt.Errorf("item %d: %w", i+1, err))
		}
	}
	if err := order.Validate(); err != nil {
		return invalid(err)
	}
	order.ComputeTotals()
	return nil
}

// resolveLine copies the name and size price of the referenced menu item onto
// a line that leaves them blank. Lines whose menu item is gone keep their own
// snapshot.
func resolveLine(ctx context.Context, s *store.Store, item *models.OrderItem) error {
	item.ItemName = strings.TrimSpace(item.ItemName)
	if item.MenuItemID == nil {
		return nil
	}
	menuItem, err := s.GetMenuItem(ctx, *item.MenuItemID)
	if errors.Is(err, store.ErrNotFound) {
		if item.ItemName == "" {
			return fmt.Errorf("menu item %d does not exist", *item.MenuItemID)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if item.ItemName == "" {
		item.ItemName = menuItem.Name
	}
	if item.UnitPrice.IsZero() {
		unit, ok := menuItem.PriceFor(item.SizeType)
		if !ok {
			return fmt.Errorf("%s is not sold by %s", menuItem.Name, item.SizeType.Label())
		}
		item.UnitPrice = unit
	}
	return menuItem.CheckQuantity(item.SizeType, item.Quantity)
}

// nextOrderNumber returns ORD_YYYYMMDD_NNN, one past the day's highest
func (w *Writer) nextOrderNumber(ctx context.Context, tx *store.Store) (string, error) {
	prefix := "ORD_" + w.now().In(w.loc).Format("20060102") + "_"
	last, err := w.lastNumber(ctx, tx, prefix)
	if err != nil {
		return "", err
	}
	seq := 1
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed order number %q", last)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// numberTaken reports an order insert that lost its number to another
// transaction. order_number is the only unique column on orders.
func numberTaken(err error) bool {
	var we *WriteError
	return errors.As(err, &we) && we.Step == StepInsertOrder && errors.Is(err, store.ErrConflict)
}

func (w *Writer) fail(ctx context.Context, op string, step Step, err error) error {
	return w.logged(ctx, op, &WriteError{Op: op, Step: step, Err: err})
}

// logged records failed writes. Validation and missing orders are the
// caller's problem and only logged at warn.
func (w *Writer) logged(ctx context.Context, op string, err error) error {
	action := "order_" + op + "_failed"
	if errors.Is(err, ErrInvalidOrder) || errors.Is(err, ErrUnknownStatus) || errors.Is(err, store.ErrNotFound) {
		w.log.Warn(logger.RequestID(ctx), action, err.Error())
		return err
	}
	w.log.Error(logger.RequestID(ctx), action, "order write rolled back", err)
	return err
}
