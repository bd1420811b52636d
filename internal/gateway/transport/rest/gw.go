// Package rest implements the reverse-proxy gateway in front of the backend services.
package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	sCfg "github.com/vivtv/product-service/internal/gateway/config"
	"github.com/vivtv/product-service/pkg/config"
	"github.com/vivtv/product-service/pkg/server"
	"golang.org/x/sync/errgroup"
)

type GW struct {
	httpCfg config.HTTPConfig
	cfg     sCfg.Services
	logger  *slog.Logger
}

func NewGW(httpCfg config.HTTPConfig, cfg sCfg.Services, logger *slog.Logger) *GW {
	return &GW{
		httpCfg: httpCfg,
		cfg:     cfg,
		logger:  logger.With("component", "gw"),
	}
}

// SetupHTTPServer initializes the HTTP server with the configured reverse proxies.
// If there is an error creating a reverse proxy, it returns an error.
func (gw *GW) SetupHTTPServer() (*http.Server, error) {
	mux := server.NewChiRouter(gw.logger)

	productProxy, err := createReverseProxyWithRewrite(gw.cfg.Product.Url, gw.cfg.Product.From, gw.cfg.Product.To)
	if err != nil {
		return nil, fmt.Errorf("failed to create product proxy: %w", err)
	}
	mux.Mount(gw.cfg.Product.From, productProxy)

	userProxy, err := createReverseProxyWithRewrite(gw.cfg.User.Url, gw.cfg.User.From, gw.cfg.User.To)
	if err != nil {
		return nil, fmt.Errorf("failed to create user proxy: %w", err)
	}
	mux.Mount(gw.cfg.User.From, userProxy)

	mux.Get("/readyz", gw.Ready)
	mux.Get("/livez", gw.Live)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", gw.httpCfg.Port),
		Handler:           mux,
		ReadTimeout:       gw.httpCfg.Timeout.Read,
		WriteTimeout:      gw.httpCfg.Timeout.Write,
		IdleTimeout:       gw.httpCfg.Timeout.Idle,
		ReadHeaderTimeout: gw.httpCfg.Timeout.ReadHeader,
		MaxHeaderBytes:    gw.httpCfg.MaxHeaderBytes,
	}, nil
}

// createReverseProxyWithRewrite creates a reverse proxy that rewrites the request path.
// It takes the target URL, the path to match, and the path to rewrite to.
func createReverseProxyWithRewrite(targetURL, fromPath, toPath string) (http.Handler, error) {
	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL '%s': %w", targetURL, err)
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	// Director will be called before the request is sent to the target.
	proxy.Director = func(req *http.Request) {
		req.URL.Scheme = target.Scheme
		req.URL.Host = target.Host
		req.URL.Path = toPath + strings.TrimPrefix(req.URL.Path, fromPath)
	}
	return proxy, nil
}

// Live checks if the service is live
func (gw *GW) Live(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Ready checks if the service is ready (i.e., all upstream services are healthy)
func (gw *GW) Ready(w http.ResponseWriter, r *http.Request) {
	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		return gw.CheckHealth(ctx, gw.cfg.Product.Url+"/healthz")
	})
	eg.Go(func() error {
		return gw.CheckHealth(ctx, gw.cfg.User.Url+"/healthz")
	})
	if err := eg.Wait(); err != nil {
		gw.logger.Error("Readiness probe failed: upstream service is not ready", "error", err)
		http.Error(w, "Service Unavailable: Upstream service is not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CheckHealth checks the health status of a service via HTTP.
func (gw *GW) CheckHealth(ctx context.Context, url string) error {
	var healthCheckClient = &http.Client{
		Timeout: 2 * time.Second,
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := healthCheckClient.Do(req)
	if err != nil {
		return fmt.Errorf("get request error, url=%v: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("response code: %d", resp.StatusCode)
	}
	return nil
}
