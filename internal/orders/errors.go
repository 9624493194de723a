package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOrder wraps every validation failure of an order write
	ErrInvalidOrder = errors.New("invalid order")
	// ErrUnknownStatus is returned for statuses outside received, delivered, paid
	ErrUnknownStatus = errors.New("unknown order status")
)

// Step names a stage of a multi-step order write
type Step string

const (
	StepValidate    Step = "validate"
	StepLoad        Step = "load_order"
	StepCustomer    Step = "customer"
	StepNumber      Step = "order_number"
	StepInsertOrder Step = "insert_order"
	StepInsertItems Step = "insert_items"
	StepUpdateOrder Step = "update_order"
	StepDeleteItems Step = "delete_items"
	StepUpdateItems Step = "update_items"
	StepDeleteOrder Step = "delete_order"
	StepStatus      Step = "update_status"
)

// WriteError reports which step of an order write failed. Nothing from the
// write is kept when it is returned.
type WriteError struct {
	Op   string
	Step Step
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s order: %s: %v", e.Op, e.Step, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
}
