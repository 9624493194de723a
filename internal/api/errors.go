package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"catering/internal/logger"
	"catering/internal/notify"
	"catering/internal/orders"
	"catering/internal/recipes"
	"catering/internal/reporting"
	"catering/internal/store"

	"github.com/gin-gonic/gin"
)

// badRequest marks malformed input caught before reaching the store
type badRequest struct {
	err error
}

func (e *badRequest) Error() string { return e.err.Error() }

func (e *badRequest) Unwrap() error { return e.err }

func bindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return &badRequest{err: fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &badRequest{err: fmt.Errorf("invalid id %q", c.Param("id"))}
	}
	return uint(id), nil
}

func optionalID(c *gin.Context, key string) (*uint, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, &badRequest{err: fmt.Errorf("invalid %s %q", key, v)}
	}
	u := uint(id)
	return &u, nil
}

// classify maps an error to a status code and the message shown to the
// client. Server errors get no message; the caller substitutes one.
func classify(err error) (int, string) {
	msg := err.Error()
	var we *orders.WriteError
	if errors.As(err, &we) {
		msg = we.Err.Error()
	}
	var br *badRequest

	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Record not found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, msg
	case errors.As(err, &br),
		errors.Is(err, store.ErrInvalid),
		errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, orders.ErrUnknownStatus),
		errors.Is(err, reporting.ErrUnknownPeriod),
		errors.Is(err, reporting.ErrInvalidRange),
		errors.Is(err, notify.ErrNoPhone),
		errors.Is(err, recipes.ErrEmptyPrompt):
		return http.StatusBadRequest, msg
	case errors.Is(err, recipes.ErrUnparseable):
		return http.StatusBadGateway, ""
	}
	return http.StatusInternalServerError, ""
}

// fail logs err against the request and writes the JSON error response.
// action completes "Failed to ...".
func (s *Server) fail(c *gin.Context, action string, err error) {
	requestID := logger.RequestID(c.Request.Context())
	status, msg := classify(err)
	if msg == "" {
		msg = "Failed to " + action
		s.log.Error(requestID, "request_failed", msg, err)
	} else {
		s.log.Warn(requestID, "request_rejected", fmt.Sprintf("%s: %v", action, err))
	}
	c.JSON(status, gin.H{"error": msg})
}
