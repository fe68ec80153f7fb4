package httpapi

import (
	"net/http"

	"foodexpress/config"
	"foodexpress/pkg/httpx"

	"github.com/gorilla/mux"
)

func NewRouter(handler *Handler, cfg config.ServerConfig) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return httpx.Wrap(r, cfg)
}
