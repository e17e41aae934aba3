package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pizza-nz/food-ordering/internal/api/handler"
	"github.com/pizza-nz/food-ordering/internal/middleware"
	"github.com/pizza-nz/food-ordering/internal/models"
	"github.com/pizza-nz/food-ordering/internal/service"
	"github.com/pizza-nz/food-ordering/internal/websockets"
)

// Deps holds everything the routes are built from
type Deps struct {
	Auth           *service.AuthService
	Catalog        *service.CatalogService
	Orders         *service.OrderService
	Hub            *websockets.Hub
	DB             handler.HealthChecker
	TokenMinutes   int
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Router handles HTTP routing
type Router struct {
	engine *gin.Engine
	deps   Deps
}

// New creates a new router
func New(deps Deps) *Router {
	r := &Router{
		engine: gin.New(),
		deps:   deps,
	}

	r.engine.Use(gin.Recovery(), middleware.Logger(deps.Logger), corsMiddleware(deps.AllowedOrigins))
	r.setupRoutes()

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}

// setupRoutes sets up the routes for the router
func (r *Router) setupRoutes() {
	d := r.deps
	users := handler.NewUserHandler(d.Auth, d.TokenMinutes, d.Logger)
	menus := handler.NewMenuHandler(d.Catalog, d.Logger)
	orders := handler.NewOrderHandler(d.Orders, d.Logger)
	health := handler.NewHealthHandler(d.DB, d.Logger)

	proprietor := middleware.RequireRole(d.Auth, models.RoleProprietor, d.Logger)
	customer := middleware.RequireRole(d.Auth, models.RoleCustomer, d.Logger)

	api := r.engine.Group("/api")

	// Public routes
	api.POST("/sign-up", users.SignUp)
	api.POST("/sign-in", users.SignIn)
	api.GET("/health", health.Health)
	api.GET("/categories", menus.ListCategories)
	api.GET("/categories/:categoryId/menus", menus.ListMenus)
	api.GET("/categories/:categoryId/menus/:menuId", menus.GetMenu)

	// Proprietor routes
	api.POST("/categories", proprietor, menus.CreateCategory)
	api.PUT("/categories/:categoryId", proprietor, menus.UpdateCategory)
	api.DELETE("/categories/:categoryId", proprietor, menus.DeleteCategory)
	api.POST("/categories/:categoryId/menus", proprietor, menus.CreateMenu)
	api.PUT("/categories/:categoryId/menus/:menuId", proprietor, menus.UpdateMenu)
	api.DELETE("/categories/:categoryId/menus/:menuId", proprietor, menus.DeleteMenu)
	api.GET("/orders/owner", proprietor, orders.ListAllOrders)
	api.PUT("/orders/:orderId/status", proprietor, orders.UpdateStatus)

	// Customer routes
	api.POST("/orders", customer, orders.PlaceOrders)
	api.GET("/orders/customer", customer, orders.ListCustomerOrders)

	if d.Hub != nil {
		ws := handler.NewWebSocketHandler(d.Hub, d.AllowedOrigins)
		api.GET("/ws", proprietor, ws.ServeWs)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
