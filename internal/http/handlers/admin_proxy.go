package handlers

import (
	"net/http"
	"net/http/httputil"
	"strings"

	"store-admin-service/pkg/response"
)

// AdminProxy forwards admin routes this service does not implement to the
// backend. The caller's bearer token is replaced by the service API key.
func (h *Handler) AdminProxy(w http.ResponseWriter, r *http.Request) {
	if h.Backend == nil {
		response.Error(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Backend is not configured")
		return
	}
	target := h.Backend.BaseURL()
	apiKey := h.Backend.APIKey()

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(rw http.ResponseWriter, req *http.Request, proxyErr error) {
		h.Logger.Warn("admin proxy failed", zapError(proxyErr))
		response.Error(rw, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Failed to reach backend")
	}
	proxy.Director = func(req *http.Request) {
		req.URL.Scheme = target.Scheme
		req.URL.Host = target.Host
		if target.Path != "" && target.Path != "/" {
			req.URL.Path = strings.TrimSuffix(target.Path, "/") + req.URL.Path
		}
		req.Host = target.Host
		req.Header.Del("Authorization")
		req.Header.Del("Cookie")
		if apiKey != "" {
			req.Header.Set("X-API-Key", apiKey)
		}
	}

	w.Header().Set("X-Store-Admin-Origin", "proxy")
	proxy.ServeHTTP(w, r)
}
