// Package admins serves the inventory-management endpoints.
package admins

import (
	"time"

	"freshscan/database"
	"freshscan/freshness"
	"freshscan/qrgen"
)

// AdminController bundles the dependencies of the admin surface. The store
// handle and QR generator are injected at construction.
type AdminController struct {
	Store      *database.Store
	QR         *qrgen.Generator
	Thresholds freshness.Thresholds
	Styles     freshness.StyleTable
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewAdminController(store *database.Store, qr *qrgen.Generator, th freshness.Thresholds, styles freshness.StyleTable) *AdminController {
	return &AdminController{
		Store:      store,
		QR:         qr,
		Thresholds: th,
		Styles:     styles,
		Now:        time.Now,
	}
}
