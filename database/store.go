package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"freshscan/freshness"
	"freshscan/models"
)

// Sentinel errors callers distinguish from system faults with errors.Is.
var (
	// ErrBatchExists: insert rejected because the batch id is already taken.
	ErrBatchExists = errors.New("batch id already exists")
	// ErrProductNotFound: the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
)

// Store owns all product and category queries. It holds the shared *gorm.DB
// handle, which pools connections so each concurrent caller gets its own
// session for the duration of a call. Every method takes the caller's
// context, so a request deadline or cancellation reaches the driver.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AddProduct inserts a new product as a single atomic statement and fills in
// its generated ID. A duplicate batch id returns ErrBatchExists and leaves
// the existing row untouched.
func (s *Store) AddProduct(ctx context.Context, p *models.Product) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrBatchExists
		}
		return err
	}
	return nil
}

// GetProduct returns the product with the given internal id, or
// ErrProductNotFound.
func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetProductByBatch returns the product with the given business key, or
// ErrProductNotFound.
func (s *Store) GetProductByBatch(ctx context.Context, batchID string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Where("batch_id = ?", batchID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ProductWithIcon is a product row joined with its category's display icon.
type ProductWithIcon struct {
	models.Product
	CategoryIcon string `json:"category_icon"`
}

// ListProducts returns every product joined with its category icon, ordered
// by expiry date ascending (soonest-expiring first). Products whose category
// has no row get the placeholder icon, never an error.
func (s *Store) ListProducts(ctx context.Context) ([]ProductWithIcon, error) {
	var rows []ProductWithIcon
	err := s.db.WithContext(ctx).Table("products").
		Select("products.*, COALESCE(categories.icon, ?) AS category_icon", DefaultCategoryIcon).
		Joins("LEFT JOIN categories ON products.category = categories.name").
		Order("products.expiry_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExpiringSoon returns products whose expiry falls within windowDays of now,
// today included, ordered by expiry date ascending.
func (s *Store) ExpiringSoon(ctx context.Context, windowDays int, now time.Time) ([]models.Product, error) {
	today := now.Format(freshness.DateLayout)
	until := now.AddDate(0, 0, windowDays).Format(freshness.DateLayout)

	var out []models.Product
	err := s.db.WithContext(ctx).
		Where("expiry_date BETWEEN ? AND ?", today, until).
		Order("expiry_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpiredProducts returns products whose expiry date has passed, ordered by
// expiry date ascending.
func (s *Store) ExpiredProducts(ctx context.Context, now time.Time) ([]models.Product, error) {
	today := now.Format(freshness.DateLayout)

	var out []models.Product
	err := s.db.WithContext(ctx).
		Where("expiry_date < ?", today).
		Order("expiry_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stats are the aggregate counts over the whole product set. The three tier
// counts partition the total.
type Stats struct {
	Total      int64 `json:"total"`
	Safe       int64 `json:"safe"`
	NearExpiry int64 `json:"near_expiry"`
	Expired    int64 `json:"expired"`
}

// Stats counts products per tier using the classifier's own date windows, so
// the aggregate view can never disagree with per-product classification.
func (s *Store) Stats(ctx context.Context, th freshness.Thresholds, now time.Time) (Stats, error) {
	w := th.Windows(now)
	var st Stats

	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&st.Total).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("expiry_date > ?", w.NearUntil).
		Count(&st.Safe).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("expiry_date >= ? AND expiry_date <= ?", w.ExpiredBefore, w.NearUntil).
		Count(&st.NearExpiry).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("expiry_date < ?", w.ExpiredBefore).
		Count(&st.Expired).Error; err != nil {
		return Stats{}, err
	}
	return st, nil
}

// ListCategories returns all categories in creation order.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CategoryIcon returns the icon for a category name, or the placeholder when
// the category has no row. A missing icon is never a fault.
func (s *Store) CategoryIcon(ctx context.Context, name string) (string, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultCategoryIcon, nil
		}
		return "", err
	}
	if c.Icon == "" {
		return DefaultCategoryIcon, nil
	}
	return c.Icon, nil
}

// ClearProducts removes every product. This administrative reset is the only
// delete surface; there is no per-record delete.
func (s *Store) ClearProducts(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

// SeedSampleProducts clears the store and inserts the demo product set with
// expiry dates relative to now, one per tier plus two extras.
func (s *Store) SeedSampleProducts(ctx context.Context, now time.Time) ([]models.Product, error) {
	if _, err := s.ClearProducts(ctx); err != nil {
		return nil, err
	}

	date := func(offsetDays int) string {
		return now.AddDate(0, 0, offsetDays).Format(freshness.DateLayout)
	}
	samples := []models.Product{
		{ProductName: "Milk", BatchID: "MILK001", Category: "Dairy",
			MfgDate: date(-20), ExpiryDate: date(-5), StorageInstructions: "Keep refrigerated at 4°C"},
		{ProductName: "Bread", BatchID: "BREAD001", Category: "Bakery",
			MfgDate: date(-3), ExpiryDate: date(1), StorageInstructions: "Store in cool dry place"},
		{ProductName: "Pasta", BatchID: "PASTA001", Category: "Grocery",
			MfgDate: date(-30), ExpiryDate: date(365), StorageInstructions: "Store in airtight container"},
		{ProductName: "Yogurt", BatchID: "YOGURT001", Category: "Dairy",
			MfgDate: date(-15), ExpiryDate: date(-2), StorageInstructions: "Keep refrigerated"},
		{ProductName: "Rice", BatchID: "RICE001", Category: "Grocery",
			MfgDate: date(-60), ExpiryDate: date(300), StorageInstructions: "Store in cool dry place"},
	}

	for i := range samples {
		if err := s.AddProduct(ctx, &samples[i]); err != nil {
			return nil, err
		}
	}
	return samples, nil
}
