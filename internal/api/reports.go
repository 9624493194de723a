package api

import (
	"errors"
	"net/http"

	"catering/internal/logger"
	"catering/internal/notify"
	"catering/internal/recipes"
	"catering/internal/reporting"
	"catering/internal/store"

	"github.com/gin-gonic/gin"
)

// Dashboard summarizes revenue, counts and rankings for a period (7d by
// default). The aggregation runs over every stored order in memory.
func (s *Server) Dashboard(c *gin.Context) {
	period := reporting.Period(c.DefaultQuery("period", string(reporting.Period7Days)))

	all, err := s.store.ListOrders(c.Request.Context(), store.OrderFilter{})
	if err != nil {
		s.fail(c, "load dashboard", err)
		return
	}

	summary, err := reporting.Summarize(all, period, s.now().In(s.loc), c.Query("start"), c.Query("end"), reporting.Options{
		Window: s.cfg.Reporting.MovingAverageWindow,
		TopN:   s.cfg.Reporting.TopN,
	})
	if err != nil {
		s.fail(c, "load dashboard", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// FindRecipe asks the language model for a recipe. Answers that do not parse
// come back as 502 with the raw text so the admin can still read them.
func (s *Server) FindRecipe(c *gin.Context) {
	if s.finder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recipe finder is not configured"})
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "find recipe", err)
		return
	}

	recipe, err := s.finder.Find(c.Request.Context(), req.Prompt)
	var unparseable *recipes.UnparseableError
	switch {
	case err == nil:
		s.recipeLookup("ok")
		c.JSON(http.StatusOK, recipe)
	case errors.As(err, &unparseable):
		s.recipeLookup("unparseable")
		s.log.Warn(logger.RequestID(c.Request.Context()), "request_rejected", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to find recipe", "raw": unparseable.Raw})
	case errors.Is(err, recipes.ErrEmptyPrompt):
		s.fail(c, "find recipe", err)
	default:
		s.recipeLookup("error")
		s.fail(c, "find recipe", err)
	}
}

// CartLink turns a customer's cart into a WhatsApp link to the business
func (s *Server) CartLink(c *gin.Context) {
	if s.cfg.WhatsApp.Phone == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WhatsApp ordering is not configured"})
		return
	}
	var cart notify.Cart
	if err := bindJSON(c, &cart); err != nil {
		s.fail(c, "build WhatsApp link", err)
		return
	}
	for _, line := range cart.Items {
		if !line.Size.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown size type " + string(line.Size)})
			return
		}
	}

	message := notify.CartMessage(s.cfg.WhatsApp.BusinessName, &cart)
	link, err := notify.WhatsAppLink(s.cfg.WhatsApp.Phone, message)
	if err != nil {
		s.fail(c, "build WhatsApp link", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link, "message": message, "total": cart.Total()})
}

func (s *Server) recipeLookup(outcome string) {
	s.metrics.RecordRecipeLookup(outcome)
	s.monitor.Increment("recipe_lookup_" + outcome + "_count")
}

// AdminMetrics returns the in-process activity snapshot
func (s *Server) AdminMetrics(c *gin.Context) {
	if s.hub != nil {
		s.monitor.RecordMetric("live_clients", s.hub.Clients())
	}
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}

// Live upgrades to the order event websocket
func (s *Server) Live(c *gin.Context) {
	if s.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed is not enabled"})
		return
	}
	s.hub.ServeWS(c)
}
