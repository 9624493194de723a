package api

import (
	"net/http"

	"catering/internal/models"

	"github.com/gin-gonic/gin"
)

type todaysMenuRequest struct {
	MenuItemID   uint   `json:"menu_item_id"`
	Date         string `json:"date"`
	IsAvailable  *bool  `json:"is_available"`
	SpecialNote  string `json:"special_note"`
	DisplayOrder int    `json:"display_order"`
}

func (r *todaysMenuRequest) entry() *models.TodaysMenu {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return &models.TodaysMenu{
		MenuItemID:   r.MenuItemID,
		Date:         r.Date,
		IsAvailable:  available,
		SpecialNote:  r.SpecialNote,
		DisplayOrder: r.DisplayOrder,
	}
}

// PublicTodaysMenu lists the dishes available on date, today by default
func (s *Server) PublicTodaysMenu(c *gin.Context) {
	date := c.DefaultQuery("date", s.today())
	entries, err := s.store.ListTodaysMenu(c.Request.Context(), date, true)
	if err != nil {
		s.fail(c, "load today's menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "items": entries})
}

func (s *Server) ListTodaysMenu(c *gin.Context) {
	date := c.DefaultQuery("date", s.today())
	entries, err := s.store.ListTodaysMenu(c.Request.Context(), date, false)
	if err != nil {
		s.fail(c, "load today's menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "items": entries})
}

func (s *Server) AddTodaysMenu(c *gin.Context) {
	var req todaysMenuRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "add to today's menu", err)
		return
	}
	if req.Date == "" {
		req.Date = s.today()
	}
	entry := req.entry()
	if err := s.store.AddTodaysMenuEntry(c.Request.Context(), entry); err != nil {
		s.fail(c, "add to today's menu", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) UpdateTodaysMenu(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "update today's menu", err)
		return
	}
	var req todaysMenuRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "update today's menu", err)
		return
	}
	entry := req.entry()
	entry.ID = id
	if err := s.store.UpdateTodaysMenuEntry(c.Request.Context(), entry); err != nil {
		s.fail(c, "update today's menu", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) DeleteTodaysMenu(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "remove from today's menu", err)
		return
	}
	if err := s.store.DeleteTodaysMenuEntry(c.Request.Context(), id); err != nil {
		s.fail(c, "remove from today's menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from today's menu"})
}

// CopyTodaysMenu copies one day's menu onto another. The target defaults to
// today.
func (s *Server) CopyTodaysMenu(c *gin.Context) {
	var req struct {
		From string `json:"from" binding:"required"`
		To   string `json:"to"`
	}
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "copy today's menu", err)
		return
	}
	if req.To == "" {
		req.To = s.today()
	}
	copied, err := s.store.CopyTodaysMenu(c.Request.Context(), req.From, req.To)
	if err != nil {
		s.fail(c, "copy today's menu", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": req.From, "to": req.To, "copied": copied})
}
