package gateway

import (
	"io"
	"net/http"
	"strings"

	"foodexpress/pkg/httpx"
	"foodexpress/pkg/logger"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	CartSvcURL  string
	OrderSvcURL string
}

type Gateway struct {
	config Config
	client HTTPClient
}

func NewGateway(config Config, client HTTPClient) *Gateway {
	return &Gateway{
		config: config,
		client: client,
	}
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httpx.Health("api-gateway")(w, r)
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	log := logger.WithRequestID(httpx.RequestIDFrom(r.Context()))
	log.Debug("Proxying request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("target", targetURL))

	url := strings.TrimRight(targetURL, "/") + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		log.Error("Failed to create proxy request", zap.Error(err))
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to create request")
		return
	}

	for k, v := range r.Header {
		req.Header[k] = v
	}
	if id := httpx.RequestIDFrom(r.Context()); id != "" {
		req.Header.Set(httpx.RequestIDHeader, id)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Error("Failed to proxy request", zap.String("target", targetURL), zap.Error(err))
		httpx.WriteError(w, r, http.StatusBadGateway, "bad_gateway", "Upstream service unavailable")
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Warn("Failed to copy response", zap.Error(err))
	}
}

// legacyPrefixes maps unversioned public paths onto the versioned service
// routes.
var legacyPrefixes = map[string]string{
	"/api/cart":   "/api/v1/cart",
	"/api/orders": "/api/v1/orders",
}

func hasPrefixSegment(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	for legacy, versioned := range legacyPrefixes {
		if hasPrefixSegment(path, legacy) {
			path = versioned + strings.TrimPrefix(path, legacy)
			r.URL.Path = path
			break
		}
	}

	switch {
	case hasPrefixSegment(path, "/api/v1/cart"):
		g.ProxyRequest(w, r, g.config.CartSvcURL)
	case hasPrefixSegment(path, "/api/v1/orders"):
		g.ProxyRequest(w, r, g.config.OrderSvcURL)
	default:
		logger.Debug("Unmatched API route", zap.String("path", path))
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", "API route not found")
	}
}

// TrackOrder serves the public tracking link encoded in order QR codes.
func (g *Gateway) TrackOrder(w http.ResponseWriter, r *http.Request) {
	r.URL.Path = "/api/v1/orders/" + mux.Vars(r)["trackingNumber"]
	g.ProxyRequest(w, r, g.config.OrderSvcURL)
}

func (g *Gateway) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.HandleFunc("/track/{trackingNumber}", g.TrackOrder).Methods("GET")
	r.PathPrefix("/api/").HandlerFunc(g.RouteHandler)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, http.StatusNotFound, "not_found", "Route not found")
	})
	return r
}
