package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"store-admin-service/internal/config"
	"store-admin-service/internal/http/handlers"
	"store-admin-service/internal/middleware"
	"store-admin-service/internal/ws"
)

func NewRouter(h *handlers.Handler, logger *zap.Logger, cfg config.Config, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Request-Id",
				"Cache-Control",
			},
			ExposedHeaders:   []string{"X-Request-Id", "Location", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Use(setResponseHeader("X-Store-Admin-Origin", "native"))
		r.Get("/order-summaries/{orderId}", h.PublicOrderSummary)
	})

	r.With(setResponseHeader("X-Store-Admin-Origin", "native")).Post("/api/admin/login", h.AdminLogin)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(setResponseHeader("X-Store-Admin-Origin", "native"))

			r.Get("/orders", h.AdminOrdersList)
			r.Get("/orders/{orderId}", h.AdminOrderGet)
			r.Put("/orders/{orderId}/status", h.AdminOrderStatusUpdate)
			r.Delete("/orders/{orderId}", h.AdminOrderDelete)
			r.Get("/orders/{orderId}/summary.pdf", h.AdminOrderSummaryPDF)
			r.Post("/orders/{orderId}/summary-link", h.AdminOrderSummaryLink)
			r.Post("/orders/{orderId}/summary/publish", h.AdminOrderSummaryPublish)

			r.Get("/products", h.AdminProductsList)
			r.Post("/products", h.AdminProductCreate)
			r.Get("/products/{productId}", h.AdminProductGet)
			r.Put("/products/{productId}", h.AdminProductUpdate)
			r.Post("/products/{productId}/activate", h.AdminProductActivate)
			r.Post("/products/{productId}/deactivate", h.AdminProductDeactivate)
			r.Post("/products/{productId}/images", h.AdminProductImagesUpload)
			r.Delete("/products/{productId}/images/{imageId}", h.AdminProductImageDelete)

			r.Get("/collections", h.AdminCollectionsList)
			r.Post("/collections", h.AdminCollectionCreate)
			r.Get("/collections/{collectionId}", h.AdminCollectionGet)
			r.Put("/collections/{collectionId}", h.AdminCollectionUpdate)
			r.Delete("/collections/{collectionId}", h.AdminCollectionDelete)
			r.Post("/collections/{collectionId}/activate", h.AdminCollectionActivate)
			r.Post("/collections/{collectionId}/deactivate", h.AdminCollectionDeactivate)
			r.Get("/collections/{collectionId}/products", h.AdminCollectionProducts)
			r.Put("/collections/{collectionId}/products", h.AdminCollectionProductsSync)
			r.Post("/collections/{collectionId}/images", h.AdminCollectionImagesUpload)
			r.Delete("/collections/{collectionId}/images/{imageId}", h.AdminCollectionImageDelete)

			r.Get("/discounts", h.AdminDiscountsList)
			r.Post("/discounts", h.AdminDiscountCreate)
			r.Get("/discounts/{discountId}", h.AdminDiscountGet)
			r.Put("/discounts/{discountId}", h.AdminDiscountUpdate)
			r.Delete("/discounts/{discountId}", h.AdminDiscountDelete)
			r.Post("/discounts/{discountId}/activate", h.AdminDiscountActivate)
			r.Post("/discounts/{discountId}/deactivate", h.AdminDiscountDeactivate)
			r.Get("/discounts/{discountId}/products", h.AdminDiscountProducts)
			r.Put("/discounts/{discountId}/products", h.AdminDiscountProductsSync)
		})

		r.NotFound(h.AdminProxy)
		r.MethodNotAllowed(h.AdminProxy)
	})

	if wsServer != nil {
		r.Get("/ws/admin/orders", wsServer.AdminOrdersWS)
	}

	return r
}

func setResponseHeader(name string, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(name, value)
			next.ServeHTTP(w, r)
		})
	}
}
