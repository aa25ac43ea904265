package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"freshscan/controllers"
	"freshscan/controllers/admins"
)

// Deps are the constructed controllers the router wires up.
type Deps struct {
	Public *controllers.ProductController
	Admin  *admins.AdminController
	// QRDir is served read-only under /static/qrcodes/ so printed labels and
	// the admin UI can fetch generated images.
	QRDir string
}

func InitRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "freshscan-api",
		})
	})).Methods(http.MethodGet)

	// CORS: permissive by default (QR codes are scanned from arbitrary
	// devices on the LAN); restrict via CORS_ALLOWED_ORIGINS.
	corsOpts := []handlers.CORSOption{
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
	}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		var origins []string
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
		corsOpts = append(corsOpts, handlers.AllowedOrigins(origins), handlers.AllowCredentials())
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(corsOpts...)(next)
	})

	// Generated QR images, addressable by product id
	r.PathPrefix("/static/qrcodes/").Handler(
		http.StripPrefix("/static/qrcodes/", http.FileServer(http.Dir(d.QRDir))),
	).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()

	// Public scan endpoints
	api.Handle("/product/{id:[0-9]+}", http.HandlerFunc(d.Public.ShowProduct)).Methods(http.MethodGet)
	api.Handle("/batch/{batch_id}", http.HandlerFunc(d.Public.ShowProductByBatch)).Methods(http.MethodGet)

	SetAdminRoutes(api, d.Admin)

	return r
}
