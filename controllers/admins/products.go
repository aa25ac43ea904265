package admins

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"freshscan/database"
	"freshscan/freshness"
	"freshscan/middleware"
	"freshscan/models"
	"freshscan/utils"
)

// productView annotates a stored row with its derived status for the admin
// listing. Status is recomputed on every read, never persisted.
type productView struct {
	database.ProductWithIcon
	StatusInfo freshness.Status `json:"status_info"`
}

func (c *AdminController) annotate(rows []database.ProductWithIcon) ([]productView, error) {
	now := c.Now()
	views := make([]productView, 0, len(rows))
	for _, row := range rows {
		status, err := freshness.ClassifyDate(row.ExpiryDate, now, c.Thresholds, c.Styles)
		if err != nil {
			return nil, err
		}
		views = append(views, productView{ProductWithIcon: row, StatusInfo: status})
	}
	return views, nil
}

// GET /v1/admin/products
// Every product annotated with status, soonest-expiring first, plus the
// aggregate counts.
func (c *AdminController) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := c.Store.ListProducts(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load products"})
		return
	}
	views, err := c.annotate(rows)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load products"})
		return
	}
	stats, err := c.Store.Stats(r.Context(), c.Thresholds, c.Now())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load stats"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"products": views,
			"stats":    stats,
		},
	})
}

// POST /v1/admin/products
func (c *AdminController) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductName         string `json:"product_name" validate:"required,nameok"`
		BatchID             string `json:"batch_id" validate:"required,batchok"`
		Category            string `json:"category" validate:"required"`
		MfgDate             string `json:"mfg_date" validate:"required,dateok"`
		ExpiryDate          string `json:"expiry_date" validate:"required,dateok"`
		StorageInstructions string `json:"storage_instructions"`
	}
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	product := models.Product{
		ProductName:         req.ProductName,
		BatchID:             req.BatchID,
		Category:            req.Category,
		MfgDate:             req.MfgDate,
		ExpiryDate:          req.ExpiryDate,
		StorageInstructions: req.StorageInstructions,
	}
	if err := c.Store.AddProduct(r.Context(), &product); err != nil {
		if errors.Is(err, database.ErrBatchExists) {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{
				Success: false,
				Message: "Batch ID already exists",
				Code:    utils.CodeConflict,
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create product"})
		return
	}

	// QR rendering is a side effect; a failure must not undo the insert.
	qrPath, err := c.QR.Generate(product.ID, product.ProductName, product.BatchID)
	if err != nil {
		log.Printf("[admin] qr generation for product %d failed: %v", product.ID, err)
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Product created",
		Data: map[string]interface{}{
			"id":      product.ID,
			"qr_path": qrPath,
		},
	})
}

// GET /v1/admin/products/expiring?days=N
func (c *AdminController) ExpiringProductsHandler(w http.ResponseWriter, r *http.Request) {
	days := c.Thresholds.NearExpiryDays
	if s := r.URL.Query().Get("days"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "days must be a non-negative integer"})
			return
		}
		days = v
	}

	products, err := c.Store.ExpiringSoon(r.Context(), days, c.Now())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load products"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"window_days": days,
			"products":    products,
		},
	})
}

// GET /v1/admin/products/expired
func (c *AdminController) ExpiredProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := c.Store.ExpiredProducts(r.Context(), c.Now())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load products"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"products": products,
		},
	})
}

// GET /v1/admin/stats
func (c *AdminController) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Store.Stats(r.Context(), c.Thresholds, c.Now())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load stats"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}

// GET /v1/admin/categories
func (c *AdminController) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Store.ListCategories(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load categories"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"categories": categories,
		},
	})
}

// DELETE /v1/admin/products
// Bulk administrative reset; there is no per-record delete.
func (c *AdminController) ClearProductsHandler(w http.ResponseWriter, r *http.Request) {
	n, err := c.Store.ClearProducts(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to clear products"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Products cleared",
		Data: map[string]interface{}{
			"deleted": n,
		},
	})
}

// POST /v1/admin/qrcodes
// Regenerates the scannable image for every stored product.
func (c *AdminController) RegenerateQRCodesHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := c.Store.ListProducts(r.Context())
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load products"})
		return
	}
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.Product)
	}

	generated := c.QR.GenerateAll(products)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "QR codes regenerated",
		Data: map[string]interface{}{
			"generated": generated,
			"total":     len(products),
		},
	})
}
