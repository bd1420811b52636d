// Package app contains the application setup for the product service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vivtv/product-service/internal/product/config"
	"github.com/vivtv/product-service/internal/product/service"
	"github.com/vivtv/product-service/internal/product/store"
	"github.com/vivtv/product-service/internal/product/transport/rest"
	"github.com/vivtv/product-service/pkg/messaging"
	"github.com/vivtv/product-service/pkg/server"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
}

// SetupDependencies wires the seeded catalog store, the mutation counters and
// the service together.
func SetupDependencies(logger *slog.Logger, publisher messaging.Publisher) *Dependencies {
	created := promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_service_products_created_total",
		Help: "Total number of products created.",
	})
	deleted := promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_service_products_deleted_total",
		Help: "Total number of products deleted.",
	})

	catalog := store.NewInMemoryStore(store.DefaultCatalog())
	pService := service.NewService(catalog, publisher, logger, created, deleted)

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the router and routes for the product service.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
