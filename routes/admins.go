package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"freshscan/controllers/admins"
	"freshscan/middleware"
)

// SetAdminRoutes registers the inventory-management endpoints. Everything
// except login sits behind the admin auth gate.
func SetAdminRoutes(api *mux.Router, c *admins.AdminController) {
	api.Handle("/admin/login", http.HandlerFunc(c.LoginHandler)).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuthMiddleware)

	admin.Handle("/products", http.HandlerFunc(c.ListProductsHandler)).Methods(http.MethodGet)
	admin.Handle("/products", http.HandlerFunc(c.CreateProductHandler)).Methods(http.MethodPost)
	admin.Handle("/products", http.HandlerFunc(c.ClearProductsHandler)).Methods(http.MethodDelete)
	admin.Handle("/products/expiring", http.HandlerFunc(c.ExpiringProductsHandler)).Methods(http.MethodGet)
	admin.Handle("/products/expired", http.HandlerFunc(c.ExpiredProductsHandler)).Methods(http.MethodGet)
	admin.Handle("/stats", http.HandlerFunc(c.StatsHandler)).Methods(http.MethodGet)
	admin.Handle("/categories", http.HandlerFunc(c.ListCategoriesHandler)).Methods(http.MethodGet)
	admin.Handle("/qrcodes", http.HandlerFunc(c.RegenerateQRCodesHandler)).Methods(http.MethodPost)
}
