package sync

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mirror/internal/models"
	"mirror/internal/woocommerce"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductSyncMode selects how much of the remote catalog a product sync
// covers.
type ProductSyncMode string

const (
	// ProductSyncFull fetches the whole catalog regardless of status.
	ProductSyncFull ProductSyncMode = "full"
	// ProductSyncIncremental fetches only the newest page of 100. Products
	// change rarely, so this cheap approximation is the default; older
	// out-of-band edits are picked up by the next full sync.
	ProductSyncIncremental ProductSyncMode = "incremental"
)

// ProductSyncResult summarizes one product sync run.
type ProductSyncResult struct {
	Products   int `json:"products"`
	Variations int `json:"variations"`
}

// SyncProducts mirrors products and their variations from the remote
// platform. Every fetched product is upserted by remote ID; variations are
// fetched for variable products only. A failure syncing one product's
// variations is logged and does not abort the run.
func (s *Service) SyncProducts(mode ProductSyncMode, progress ProgressFunc) (ProductSyncResult, error) {
	runID := uuid.NewString()
	if err := s.acquireLock(runID); err != nil {
		return ProductSyncResult{}, err
	}
	defer s.releaseLock(runID)

	params := url.Values{}
	params.Set("status", "any")
	params.Set("orderby", "date")
	params.Set("order", "desc")

	s.report(progress, "Product sync (%s) started", mode)

	var remote []woocommerce.Product
	var err error
	if mode == ProductSyncIncremental {
		remote, _, _, err = s.client.ListProducts(params, 1, maxPageSize)
	} else {
		remote, err = fetchAllPages(func(page, perPage int) ([]woocommerce.Product, int, int, error) {
			return s.client.ListProducts(params, page, perPage)
		})
	}
	if err != nil {
		return ProductSyncResult{}, fmt.Errorf("failed to list products: %w", err)
	}

	result := ProductSyncResult{}
	for i, product := range remote {
		if err := s.upsertProduct(product); err != nil {
			s.logger.Error("Failed to upsert product %d: %v", product.ID, err)
			continue
		}
		result.Products++

		if product.Type == string(models.ProductTypeVariable) {
			count, err := s.syncVariations(product)
			if err != nil {
				// One product's bad variations must not sink the rest.
				s.logger.Error("Failed to sync variations of product %d: %v", product.ID, err)
			}
			result.Variations += count
		}

		if (i+1)%progressInterval == 0 {
			s.report(progress, "Synced %d/%d products", i+1, len(remote))
		}
	}

	s.report(progress, "Product sync finished: %d products, %d variations", result.Products, result.Variations)
	return result, nil
}

func (s *Service) upsertProduct(remote woocommerce.Product) error {
	var existing models.Product
	err := s.db.First(&existing, "id = ?", remote.ID).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	product := models.Product{
		ID:               remote.ID,
		Name:             remote.Name,
		SKU:              remote.SKU,
		Price:            parseAmount(remote.Price),
		Status:           remote.Status,
		ProductType:      remote.Type,
		Permalink:        remote.Permalink,
		RemoteCreatedAt:  remote.DateCreated.Time,
		RemoteModifiedAt: remote.DateModified.Time,
		EventDate:        productEventDate(remote.SKU),
	}

	if found {
		// Remote creation time is fixed at first sight, never overwritten.
		product.RemoteCreatedAt = existing.RemoteCreatedAt
		product.CreatedAt = existing.CreatedAt
		return s.db.Save(&product).Error
	}
	if product.RemoteCreatedAt.IsZero() {
		product.RemoteCreatedAt = time.Now().UTC()
	}
	return s.db.Create(&product).Error
}

func (s *Service) syncVariations(parent woocommerce.Product) (int, error) {
	variations, err := s.client.ListVariations(parent.ID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, variation := range variations {
		if err := s.upsertVariation(parent.ID, variation); err != nil {
			s.logger.Error("Failed to upsert variation %d of product %d: %v", variation.ID, parent.ID, err)
			continue
		}
		count++
	}
	return count, nil
}

func (s *Service) upsertVariation(productID int64, remote woocommerce.Variation) error {
	var existing models.ProductVariation
	err := s.db.First(&existing, "id = ?", remote.ID).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	attributes := make(models.AttributeBag, 0, len(remote.Attributes))
	names := make([]string, 0, len(remote.Attributes))
	for _, attr := range remote.Attributes {
		attributes = append(attributes, models.AttributeEntry{Name: attr.Name, Value: attr.Option})
		if attr.Option != "" {
			names = append(names, attr.Option)
		}
	}

	variation := models.ProductVariation{
		ID:            remote.ID,
		ProductID:     productID,
		Name:          strings.Join(names, " / "),
		SKU:           remote.SKU,
		Price:         parseAmount(remote.Price),
		StockQuantity: remote.StockQuantity,
		StockStatus:   remote.StockStatus,
		Attributes:    attributes,
		EventDate:     variationEventDate(remote.Attributes, remote.SKU),
	}

	if found {
		variation.CreatedAt = existing.CreatedAt
		return s.db.Save(&variation).Error
	}
	return s.db.Create(&variation).Error
}
