package api

import (
	"net/http"
	"time"

	"catering/internal/auth"
	"catering/internal/config"
	"catering/internal/events"
	"catering/internal/live"
	"catering/internal/logger"
	"catering/internal/monitoring"
	"catering/internal/orders"
	"catering/internal/recipes"
	"catering/internal/store"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators a Server is built from. Finder may be nil when
// no language model is configured; Publisher defaults to events.Nop.
type Deps struct {
	Config    *config.Config
	Store     *store.Store
	Writer    *orders.Writer
	Auth      *auth.Authenticator
	Finder    *recipes.Finder
	Hub       *live.Hub
	Publisher events.Publisher
	Metrics   *monitoring.MetricsCollector
	Monitor   *monitoring.Monitor
	Log       *logger.Logger
	Location  *time.Location
}

// Server is the catering HTTP API: public menu and ordering endpoints plus
// the admin API behind RequireAdmin.
type Server struct {
	Router *gin.Engine

	cfg       *config.Config
	store     *store.Store
	writer    *orders.Writer
	auth      *auth.Authenticator
	finder    *recipes.Finder
	hub       *live.Hub
	publisher events.Publisher
	metrics   *monitoring.MetricsCollector
	monitor   *monitoring.Monitor
	log       *logger.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewServer creates the API and registers every route
func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Monitor == nil {
		d.Monitor = monitoring.NewMonitor()
	}
	if d.Metrics == nil {
		d.Metrics = monitoring.NewMetricsCollector()
	}
	if d.Writer == nil {
		d.Writer = orders.NewWriter(d.Store, d.Log, d.Location)
	}

	router := gin.New()
	s := &Server{
		Router:    router,
		cfg:       d.Config,
		store:     d.Store,
		writer:    d.Writer,
		auth:      d.Auth,
		finder:    d.Finder,
		hub:       d.Hub,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		monitor:   d.Monitor,
		log:       d.Log,
		loc:       d.Location,
		now:       time.Now,
	}

	router.Use(gin.Recovery(), requestID(), s.accessLog(), corsMiddleware(d.Config.Server.AllowedOrigins))
	s.setupRoutes()
	return s
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.Router
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.Health)

	v1 := s.Router.Group("/api/v1")
	{
		v1.POST("/auth/login", s.auth.LoginHandler)

		// Public menu
		v1.GET("/menu/categories", s.PublicCategories)
		v1.GET("/menu/items", s.PublicMenuItems)
		v1.GET("/menu/items/:id", s.PublicMenuItem)
		v1.GET("/todays-menu", s.PublicTodaysMenu)

		// Reviews and ordering
		v1.GET("/reviews", s.PublicReviews)
		v1.POST("/reviews", s.SubmitReview)
		v1.POST("/whatsapp/order-link", s.CartLink)
	}

	admin := v1.Group("/admin", s.auth.RequireAdmin())
	{
		admin.GET("/categories", s.ListCategories)
		admin.POST("/categories", s.CreateCategory)
		admin.PUT("/categories/:id", s.UpdateCategory)
		admin.DELETE("/categories/:id", s.DeleteCategory)

		admin.GET("/items", s.ListMenuItems)
		admin.POST("/items", s.CreateMenuItem)
		admin.GET("/items/:id", s.GetMenuItem)
		admin.PUT("/items/:id", s.UpdateMenuItem)
		admin.DELETE("/items/:id", s.DeleteMenuItem)
		admin.PATCH("/items/:id/availability", s.SetAvailability)

		admin.GET("/customers", s.ListCustomers)
		admin.POST("/customers", s.CreateCustomer)
		admin.GET("/customers/:id", s.GetCustomer)
		admin.PUT("/customers/:id", s.UpdateCustomer)
		admin.DELETE("/customers/:id", s.DeleteCustomer)
		admin.GET("/customers/:id/orders", s.CustomerOrders)

		admin.GET("/orders", s.ListOrders)
		admin.POST("/orders", s.CreateOrder)
		admin.GET("/orders/export", s.ExportOrders)
		admin.GET("/orders/:id", s.GetOrder)
		admin.PUT("/orders/:id", s.UpdateOrder)
		admin.DELETE("/orders/:id", s.DeleteOrder)
		admin.PATCH("/orders/:id/status", s.UpdateOrderStatus)
		admin.GET("/orders/:id/receipt", s.OrderReceipt)
		admin.GET("/orders/:id/whatsapp", s.OrderWhatsApp)

		admin.GET("/reviews", s.ListReviews)
		admin.PATCH("/reviews/:id/approve", s.ApproveReview)
		admin.PATCH("/reviews/:id/reject", s.RejectReview)
		admin.DELETE("/reviews/:id", s.DeleteReview)

		admin.GET("/todays-menu", s.ListTodaysMenu)
		admin.POST("/todays-menu", s.AddTodaysMenu)
		admin.POST("/todays-menu/copy", s.CopyTodaysMenu)
		admin.PUT("/todays-menu/:id", s.UpdateTodaysMenu)
		admin.DELETE("/todays-menu/:id", s.DeleteTodaysMenu)

		admin.GET("/reports/dashboard", s.Dashboard)
		admin.POST("/recipes/find", s.FindRecipe)

		admin.GET("/metrics", s.AdminMetrics)
		admin.GET("/live", s.Live)
	}
}

// Health reports whether the database answers
func (s *Server) Health(c *gin.Context) {
	if err := s.store.DB().DB().PingContext(c.Request.Context()); err != nil {
		s.log.Error(logger.RequestID(c.Request.Context()), "health_check", "database ping failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Catering API is running"})
}

// today is the calendar date in the reporting location
func (s *Server) today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}
