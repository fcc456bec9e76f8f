package router

import (
	"time"

	"github.com/ciprianbratila/ortho-orders/internal/config"
	"github.com/ciprianbratila/ortho-orders/internal/handler"
	"github.com/ciprianbratila/ortho-orders/internal/middleware"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"
	"github.com/ciprianbratila/ortho-orders/internal/service"
	"github.com/ciprianbratila/ortho-orders/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ciprianbratila/ortho-orders/internal/infra"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	productRepo := repository.NewProductRepository(db)
	clientRepo := repository.NewClientRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	priceCache := service.NewPriceCache(rdb)
	catalog := service.NewCatalogLoader(materialRepo, productRepo)

	authSvc := service.NewAuthService(userRepo, groupRepo, cfg)
	groupSvc := service.NewGroupService(groupRepo)
	materialSvc := service.NewMaterialService(materialRepo, priceCache)
	productSvc := service.NewProductService(productRepo, catalog, priceCache)
	clientSvc := service.NewClientService(clientRepo, orderRepo)
	employeeSvc := service.NewEmployeeService(employeeRepo)
	orderSvc := service.NewOrderService(orderRepo, clientRepo, catalog)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, orderRepo, catalog, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	groupsH := handler.NewGroupsHandler(groupSvc)
	materialsH := handler.NewMaterialsHandler(materialSvc)
	productsH := handler.NewProductsHandler(productSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	employeesH := handler.NewEmployeesHandler(employeeSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes — access is granted per module via the user's group
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		materials := v1.Group("/materials", middleware.RequireModule(model.ModuleMaterials))
		{
			materials.POST("", materialsH.Create)
			materials.GET("", materialsH.List)
			materials.GET("/:id", materialsH.GetByID)
			materials.PUT("/:id", materialsH.Update)
			materials.DELETE("/:id", materialsH.Deactivate)
			materials.PATCH("/:id/reactivate", materialsH.Reactivate)
			materials.PATCH("/:id/stock", materialsH.AdjustStock)
			materials.GET("/:id/price-history", materialsH.PriceHistory)
			materials.GET("/:id/stock-movements", materialsH.StockMovements)
		}

		products := v1.Group("/products", middleware.RequireModule(model.ModuleProducts))
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/:id", productsH.GetByID)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
			products.PATCH("/:id/reactivate", productsH.Reactivate)
			products.GET("/:id/price", productsH.Price)
			products.GET("/:id/derived", productsH.Derived)
			products.POST("/price-preview", productsH.PricePreview)
			products.POST("/duplicate-check", productsH.DuplicateCheck)
		}

		clients := v1.Group("/clients", middleware.RequireModule(model.ModuleClients))
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.GetByID)
			clients.PUT("/:id", clientsH.Update)
			clients.DELETE("/:id", clientsH.Delete)
			clients.POST("/:id/documents", clientsH.AddDocument)
			clients.GET("/:id/documents", clientsH.ListDocuments)
			clients.DELETE("/:id/documents/:doc_id", clientsH.DeleteDocument)
		}

		employees := v1.Group("/employees", middleware.RequireModule(model.ModuleEmployees))
		{
			employees.POST("", employeesH.Create)
			employees.GET("", employeesH.List)
			employees.GET("/:id", employeesH.GetByID)
			employees.PUT("/:id", employeesH.Update)
			employees.DELETE("/:id", employeesH.Deactivate)
		}

		orders := v1.Group("/orders", middleware.RequireModule(model.ModuleOrders))
		{
			orders.POST("", ordersH.Create)
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.GetByID)
			orders.PUT("/:id", ordersH.Update)
			orders.PATCH("/:id/status", ordersH.UpdateStatus)
		}

		// Dashboard stats live under their own module so front-desk groups
		// can see the overview without order edit rights.
		v1.GET("/stats/orders", middleware.RequireModule(model.ModuleDashboard), ordersH.Stats)

		invoices := v1.Group("/invoices", middleware.RequireModule(model.ModuleInvoices))
		{
			invoices.POST("", invoicesH.Issue)
			invoices.GET("", invoicesH.List)
			invoices.GET("/:id", invoicesH.GetByID)
			invoices.GET("/by-order/:order_id", invoicesH.GetByOrderID)
			invoices.PATCH("/:id/status", invoicesH.UpdateStatus)
			invoices.GET("/:id/pdf", invoicesH.DownloadPDF)
		}

		admin := v1.Group("/admin", middleware.RequireModule(model.ModuleAdmin))
		{
			admin.POST("/users", usersH.Create)
			admin.GET("/users", usersH.List)
			admin.PUT("/users/:id", usersH.Update)
			admin.DELETE("/users/:id", usersH.Deactivate)
			admin.PATCH("/users/:id/reactivate", usersH.Reactivate)

			admin.POST("/groups", groupsH.Create)
			admin.GET("/groups", groupsH.List)
			admin.PUT("/groups/:id", groupsH.Update)
			admin.DELETE("/groups/:id", groupsH.Delete)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
