package router

import (
	"time"

	"storepos/internal/config"
	"storepos/internal/handler"
	"storepos/internal/infra"
	"storepos/internal/middleware"
	"storepos/internal/permission"
	"storepos/internal/repository"
	"storepos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailerCB *infra.CircuitBreaker) *gin.Engine {
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

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	purchaseRepo := repository.NewPurchaseOrderRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg)
	stockSvc := service.NewStockService(stockRepo)
	productSvc := service.NewProductService(productRepo, stockRepo, stockSvc, rdb)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, productRepo, stockSvc)
	saleSvc := service.NewSaleService(saleRepo, productRepo, stockSvc)
	receiptSvc := service.NewReceiptService(saleRepo, cfg)
	reportSvc := service.NewReportService(saleRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	supplierSvc := service.NewSupplierService(supplierRepo)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	stockH := handler.NewStockHandler(stockSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	salesH := handler.NewSalesHandler(saleSvc, receiptSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)

	// Public
	r.GET("/health", handler.Health(db, rdb, mailerCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Permissions are declared per-route; the service layer
	// re-checks the same table.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog reads are open to any authenticated user
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.Get)
		v1.GET("/products/:id/history", stockH.History)
		// separate prefix: a literal "barcode" segment under /products would
		// collide with the :id wildcard in gin's route tree
		v1.GET("/barcode/:barcode", productsH.GetByBarcode)

		v1.GET("/permissions/check", authH.PermissionCheck)

		prods := v1.Group("/products", middleware.RequirePermission(permission.ActionManageProducts))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		stock := v1.Group("/stock")
		{
			stock.POST("/adjust", middleware.RequirePermission(permission.ActionAdjustStock), stockH.Adjust)
			stock.POST("/transfer", middleware.RequirePermission(permission.ActionTransferStock), stockH.Transfer)
			stock.POST("/count", middleware.RequirePermission(permission.ActionRunInventory), stockH.Count)
			stock.GET("/alerts", stockH.Alerts)
		}

		purchases := v1.Group("/purchases")
		{
			purchases.POST("", middleware.RequirePermission(permission.ActionCreatePO), purchasesH.Create)
			purchases.GET("", purchasesH.List)
			purchases.GET("/:id", purchasesH.Get)
			purchases.PUT("/:id/lines", middleware.RequirePermission(permission.ActionCreatePO), purchasesH.SaveLines)
			purchases.POST("/:id/approve", middleware.RequirePermission(permission.ActionApprovePO), purchasesH.Approve)
			purchases.POST("/:id/reject", middleware.RequirePermission(permission.ActionApprovePO), purchasesH.Reject)
			purchases.POST("/:id/receive", middleware.RequirePermission(permission.ActionReceivePO), purchasesH.Receive)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", middleware.RequirePermission(permission.ActionCheckout), salesH.Checkout)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.GET("/:id/receipt", salesH.Receipt)
			sales.POST("/:id/refund", middleware.RequirePermission(permission.ActionRefund), salesH.Refund)
		}

		v1.GET("/reports/revenue", middleware.RequirePermission(permission.ActionExportRevenue), reportsH.Revenue)

		v1.GET("/categories", categoriesH.List)
		categories := v1.Group("/categories", middleware.RequirePermission(permission.ActionManageProducts))
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Deactivate)
		}

		v1.GET("/suppliers", suppliersH.List)
		suppliers := v1.Group("/suppliers", middleware.RequirePermission(permission.ActionManageProducts))
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.PUT("/:id", suppliersH.Update)
			suppliers.DELETE("/:id", suppliersH.Deactivate)
		}

		users := v1.Group("/users", middleware.RequirePermission(permission.ActionManageUsers))
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.PATCH("/:id/reactivate", authH.ReactivateUser)
		}
	}

	// Swagger UI is only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
