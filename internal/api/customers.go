package api

import (
	"net/http"

	"catering/internal/models"
	"catering/internal/store"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListCustomers(c *gin.Context) {
	customers, err := s.store.ListCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, "load customers", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "load customer", err)
		return
	}
	customer, err := s.store.GetCustomer(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "load customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := bindJSON(c, &customer); err != nil {
		s.fail(c, "create customer", err)
		return
	}
	customer.ID = 0
	if err := s.store.CreateCustomer(c.Request.Context(), &customer); err != nil {
		s.fail(c, "create customer", err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "update customer", err)
		return
	}
	var customer models.Customer
	if err := bindJSON(c, &customer); err != nil {
		s.fail(c, "update customer", err)
		return
	}
	customer.ID = id
	if err := s.store.UpdateCustomer(c.Request.Context(), &customer); err != nil {
		s.fail(c, "update customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer keeps the customer's orders; they only lose the link
func (s *Server) DeleteCustomer(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "delete customer", err)
		return
	}
	if err := s.store.DeleteCustomer(c.Request.Context(), id); err != nil {
		s.fail(c, "delete customer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

func (s *Server) CustomerOrders(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "load customer orders", err)
		return
	}
	if _, err := s.store.GetCustomer(c.Request.Context(), id); err != nil {
		s.fail(c, "load customer orders", err)
		return
	}
	list, err := s.store.ListOrders(c.Request.Context(), store.OrderFilter{CustomerID: &id})
	if err != nil {
		s.fail(c, "load customer orders", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
