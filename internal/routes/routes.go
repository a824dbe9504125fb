package routes

import (
	"net/http"

	"github.com/cardrip/cardrip-api/internal/handlers"
	"github.com/cardrip/cardrip-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware tells the browser that the configured frontend origin is
// allowed to call us with credentials. Everything else is refused by the
// browser's own policy.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must run before anything else.
	router.Use(CORSMiddleware(h.Cfg.CORSOrigin))

	// Uploaded pack art and card scans are served as static files.
	router.Static("/uploads", h.Cfg.UploadDir)

	api := router.Group("/api")
	{
		// --- Ping Route (Public) ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Public Shop Routes ---
		api.GET("/shop/products", h.GetShopProducts)
		api.GET("/shop/products/:slug", h.GetShopProductBySlug)

		// --- Public Feed Routes ---
		api.GET("/rip/recent", h.GetRecentRips)
		api.GET("/rip/live", h.LiveFeed)

		// --- Session Routes ---
		// These resolve to the token's user, or to the local default
		// collector when no token is sent.
		session := api.Group("/")
		session.Use(middleware.Session(h.DB, h.Cfg))
		{
			session.GET("/me", h.GetMe)

			// --- Rip Routes ---
			session.POST("/rip/open", h.OpenPack)

			// --- Shop Routes ---
			session.POST("/shop/buy", h.BuyProduct)
			session.GET("/shop/inventory", h.GetMyInventory)

			// --- Collection Routes ---
			session.GET("/collection", h.GetMyCollection)
			session.GET("/collection/checklist/:productId", h.GetChecklist)

			// --- Wallet Routes ---
			session.GET("/wallet", h.GetMyWallet)
			session.POST("/wallet/topup", h.TopUpWallet)

			// --- Notification Routes ---
			session.GET("/notifications", h.GetMyNotifications)
			session.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
			session.PATCH("/notifications/read-all", h.MarkAllNotificationsRead)
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/admin")
		admin.Use(middleware.Session(h.DB, h.Cfg))
		admin.Use(middleware.RequireAdmin(h.DB))
		{
			admin.GET("/stats", h.GetAdminStats)
			admin.GET("/settings", h.GetSettings)
			admin.PATCH("/settings", h.UpdateSetting)
			admin.POST("/upload", h.UploadImage)

			// --- Product Management ---
			admin.POST("/products", h.CreateProduct)
			admin.GET("/products", h.GetAdminProducts)
			admin.GET("/products/:id", h.GetAdminProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.PATCH("/products/:id/activate", h.ActivateProduct)
			admin.PATCH("/products/:id/archive", h.ArchiveProduct)
			admin.POST("/products/:id/grant-packs", h.GrantPacks)
			admin.POST("/products/:id/generate-description", h.GenerateProductDescription)

			// --- Set Management ---
			admin.POST("/products/:id/sets", h.CreateProductSet)
			admin.PUT("/sets/:id", h.UpdateProductSet)
			admin.DELETE("/sets/:id", h.DeleteProductSet)

			// --- Card Management ---
			admin.POST("/sets/:id/cards", h.CreateCard)
			admin.POST("/sets/:id/cards/bulk", h.BulkCreateCards)
			admin.PUT("/cards/:id", h.UpdateCard)
			admin.DELETE("/cards/:id", h.DeleteCard)
		}
	}

	return router
}
