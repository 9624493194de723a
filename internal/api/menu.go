package api

import (
	"net/http"

	"catering/internal/models"
	"catering/internal/store"

	"github.com/gin-gonic/gin"
)

// Public menu handlers

func (s *Server) PublicCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context(), true)
	if err != nil {
		s.fail(c, "load categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) PublicMenuItems(c *gin.Context) {
	categoryID, err := optionalID(c, "category_id")
	if err != nil {
		s.fail(c, "load menu items", err)
		return
	}
	items, err := s.store.ListMenuItems(c.Request.Context(), store.MenuItemFilter{
		CategoryID:    categoryID,
		Query:         c.Query("q"),
		Ingredient:    c.Query("ingredient"),
		AvailableOnly: true,
	})
	if err != nil {
		s.fail(c, "load menu items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// PublicMenuItem hides dishes that are switched off
func (s *Server) PublicMenuItem(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "load menu item", err)
		return
	}
	item, err := s.store.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "load menu item", err)
		return
	}
	if !item.IsAvailable {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Category handlers

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context(), false)
	if err != nil {
		s.fail(c, "load categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) CreateCategory(c *gin.Context) {
	var category models.MenuCategory
	if err := bindJSON(c, &category); err != nil {
		s.fail(c, "create category", err)
		return
	}
	category.ID = 0
	if err := s.store.CreateCategory(c.Request.Context(), &category); err != nil {
		s.fail(c, "create category", err)
		return
	}
	s.monitor.RecordActivity("category", "created", map[string]interface{}{"id": category.ID})
	c.JSON(http.StatusCreated, category)
}

func (s *Server) UpdateCategory(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "update category", err)
		return
	}
	var category models.MenuCategory
	if err := bindJSON(c, &category); err != nil {
		s.fail(c, "update category", err)
		return
	}
	category.ID = id
	if err := s.store.UpdateCategory(c.Request.Context(), &category); err != nil {
		s.fail(c, "update category", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) DeleteCategory(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "delete category", err)
		return
	}
	if err := s.store.DeleteCategory(c.Request.Context(), id); err != nil {
		s.fail(c, "delete category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// Menu item handlers

func (s *Server) ListMenuItems(c *gin.Context) {
	categoryID, err := optionalID(c, "category_id")
	if err != nil {
		s.fail(c, "load menu items", err)
		return
	}
	items, err := s.store.ListMenuItems(c.Request.Context(), store.MenuItemFilter{
		CategoryID:    categoryID,
		Query:         c.Query("q"),
		Ingredient:    c.Query("ingredient"),
		AvailableOnly: c.Query("available") == "true",
	})
	if err != nil {
		s.fail(c, "load menu items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) GetMenuItem(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "load menu item", err)
		return
	}
	item, err := s.store.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "load menu item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) CreateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := bindJSON(c, &item); err != nil {
		s.fail(c, "create menu item", err)
		return
	}
	item.ID = 0
	item.Category = nil
	if err := s.store.CreateMenuItem(c.Request.Context(), &item); err != nil {
		s.fail(c, "create menu item", err)
		return
	}
	s.monitor.RecordActivity("menu_item", "created", map[string]interface{}{"id": item.ID, "name": item.Name})
	c.JSON(http.StatusCreated, item)
}

func (s *Server) UpdateMenuItem(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "update menu item", err)
		return
	}
	var item models.MenuItem
	if err := bindJSON(c, &item); err != nil {
		s.fail(c, "update menu item", err)
		return
	}
	item.ID = id
	item.Category = nil
	if err := s.store.UpdateMenuItem(c.Request.Context(), &item); err != nil {
		s.fail(c, "update menu item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) DeleteMenuItem(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "delete menu item", err)
		return
	}
	if err := s.store.DeleteMenuItem(c.Request.Context(), id); err != nil {
		s.fail(c, "delete menu item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

// SetAvailability switches a dish on or off without a full update
func (s *Server) SetAvailability(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "update availability", err)
		return
	}
	var req struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "update availability", err)
		return
	}
	item, err := s.store.SetMenuItemAvailability(c.Request.Context(), id, *req.IsAvailable)
	if err != nil {
		s.fail(c, "update availability", err)
		return
	}
	c.JSON(http.StatusOK, item)
}
