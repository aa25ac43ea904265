package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"freshscan/database"
	"freshscan/freshness"
	"freshscan/models"
	"freshscan/utils"
)

// ProductController serves the public scan endpoints: a consumer lands here
// after scanning a product's QR code.
type ProductController struct {
	Store      *database.Store
	Thresholds freshness.Thresholds
	Styles     freshness.StyleTable
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewProductController(store *database.Store, th freshness.Thresholds, styles freshness.StyleTable) *ProductController {
	return &ProductController{
		Store:      store,
		Thresholds: th,
		Styles:     styles,
		Now:        time.Now,
	}
}

// ProductView is the public display shape: record fields plus derived status.
type ProductView struct {
	models.Product
	CategoryIcon string           `json:"category_icon"`
	StatusInfo   freshness.Status `json:"status_info"`
}

func (c *ProductController) view(ctx context.Context, p *models.Product) (ProductView, error) {
	status, err := freshness.ClassifyDate(p.ExpiryDate, c.Now(), c.Thresholds, c.Styles)
	if err != nil {
		return ProductView{}, err
	}
	icon, err := c.Store.CategoryIcon(ctx, p.Category)
	if err != nil {
		return ProductView{}, err
	}
	return ProductView{Product: *p, CategoryIcon: icon, StatusInfo: status}, nil
}

func (c *ProductController) writeProduct(w http.ResponseWriter, r *http.Request, p *models.Product, err error) {
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false,
				Message: "Product not found",
				Code:    utils.CodeNotFound,
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load product"})
		return
	}

	view, err := c.view(r.Context(), p)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load product"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    view,
	})
}

// GET /v1/product/{id}
func (c *ProductController) ShowProduct(w http.ResponseWriter, r *http.Request) {
	id64, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id64 == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid product id"})
		return
	}
	p, err := c.Store.GetProduct(r.Context(), uint(id64))
	c.writeProduct(w, r, p, err)
}

// GET /v1/batch/{batch_id}
func (c *ProductController) ShowProductByBatch(w http.ResponseWriter, r *http.Request) {
	batchID := mux.Vars(r)["batch_id"]
	p, err := c.Store.GetProductByBatch(r.Context(), batchID)
	c.writeProduct(w, r, p, err)
}
