package sync

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"mirror/internal/models"
	"mirror/internal/woocommerce"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderSyncMode selects the query window of an order sync.
type OrderSyncMode string

const (
	// OrderSyncDays fetches orders created in the last N days.
	OrderSyncDays OrderSyncMode = "days"
	// OrderSyncSmart is the incremental default: fetch orders modified
	// after the persisted watermark minus a safety buffer.
	OrderSyncSmart OrderSyncMode = "smart"
	// OrderSyncFull fetches the entire remote order set. Expensive,
	// intended as a manually-triggered recovery path.
	OrderSyncFull OrderSyncMode = "full"
	// OrderSyncRapid fetches only the most recent N orders.
	OrderSyncRapid OrderSyncMode = "rapid"
)

const (
	// watermarkBuffer tolerates clock skew and out-of-order remote writes
	// near the incremental boundary.
	watermarkBuffer = time.Hour
	// bootstrapLookback is the window used when the mirror holds no orders
	// yet, instead of querying from epoch.
	bootstrapLookback = 90 * 24 * time.Hour
)

// OrderSyncResult summarizes one order sync run. ChangedIDs is the engine's
// sole "what happened" signal: it is recomputed on every run and is not a
// durable event log.
type OrderSyncResult struct {
	Orders     int     `json:"orders"`
	ChangedIDs []int64 `json:"changed_ids"`
}

// SyncOrders mirrors orders and their line items from the remote platform.
// value is the day count for days mode and the record count for rapid mode;
// other modes ignore it.
func (s *Service) SyncOrders(mode OrderSyncMode, value int, progress ProgressFunc) (OrderSyncResult, error) {
	runID := uuid.NewString()
	if err := s.acquireLock(runID); err != nil {
		return OrderSyncResult{}, err
	}
	defer s.releaseLock(runID)

	runStart := time.Now().UTC()
	s.report(progress, "Order sync (%s) started", mode)

	remote, err := s.fetchOrders(mode, value)
	if err != nil {
		return OrderSyncResult{}, fmt.Errorf("failed to list orders: %w", err)
	}

	result := OrderSyncResult{}
	for i, order := range remote {
		changed, err := s.reconcileOrder(order)
		if err != nil {
			s.logger.Error("Failed to reconcile order %d: %v", order.ID, err)
			continue
		}
		result.Orders++
		if changed {
			result.ChangedIDs = append(result.ChangedIDs, order.ID)
			s.notifyOrderChanged(order.ID)
		}

		if (i+1)%progressInterval == 0 {
			s.report(progress, "Synced %d/%d orders", i+1, len(remote))
		}
	}

	// Only smart and full runs cover every change up to runStart, so only
	// they may advance the persisted cursor; the buffer re-covers the
	// boundary on the next smart sync.
	if mode == OrderSyncSmart || mode == OrderSyncFull {
		s.setState(orderWatermarkKey, runStart.Format(time.RFC3339))
	}

	s.report(progress, "Order sync finished: %d orders, %d changed", result.Orders, len(result.ChangedIDs))
	return result, nil
}

func (s *Service) fetchOrders(mode OrderSyncMode, value int) ([]woocommerce.Order, error) {
	params := url.Values{}
	params.Set("status", "any")

	fetch := func(page, perPage int) ([]woocommerce.Order, int, int, error) {
		return s.client.ListOrders(params, page, perPage)
	}

	switch mode {
	case OrderSyncDays:
		after := time.Now().UTC().Add(-time.Duration(value) * 24 * time.Hour)
		params.Set("after", after.Format(time.RFC3339))
		return fetchAllPages(fetch)

	case OrderSyncSmart:
		since := s.orderWatermark().Add(-watermarkBuffer)
		params.Set("modified_after", since.Format(time.RFC3339))
		return fetchAllPages(fetch)

	case OrderSyncFull:
		return fetchAllPages(fetch)

	case OrderSyncRapid:
		params.Set("orderby", "date")
		params.Set("order", "desc")
		return fetchRecent(fetch, value)

	default:
		return nil, fmt.Errorf("unknown order sync mode %q", mode)
	}
}

// orderWatermark resolves the incremental lower bound: the persisted cursor
// when present, otherwise the newest local sync timestamp, otherwise a fixed
// lookback for an empty mirror.
func (s *Service) orderWatermark() time.Time {
	if raw, ok := s.getState(orderWatermarkKey); ok {
		if cursor, err := time.Parse(time.RFC3339, raw); err == nil {
			return cursor
		}
	}

	var newest models.Order
	err := s.db.Order("last_synced_at DESC").First(&newest).Error
	if err == nil && !newest.LastSyncedAt.IsZero() {
		return newest.LastSyncedAt
	}

	return time.Now().UTC().Add(-bootstrapLookback)
}

// reconcileOrder upserts one order's scalar fields, replaces its line items
// and reports whether the order counts as changed: new, status moved, or
// total moved by more than the tolerance.
func (s *Service) reconcileOrder(remote woocommerce.Order) (bool, error) {
	var existing models.Order
	err := s.db.First(&existing, "id = ?", remote.ID).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	total := parseAmount(remote.Total)
	changed := !found || existing.Status != remote.Status || totalsDiffer(existing.Total, total)

	order := models.Order{
		ID:               remote.ID,
		Status:           remote.Status,
		Total:            total,
		Currency:         remote.Currency,
		BillingFirstName: remote.Billing.FirstName,
		BillingLastName:  remote.Billing.LastName,
		BillingEmail:     remote.Billing.Email,
		BillingPhone:     remote.Billing.Phone,
		Metadata:         convertMeta(remote.MetaData),
		RemoteCreatedAt:  remote.DateCreated.Time,
		LastSyncedAt:     time.Now().UTC(),
	}

	if found {
		order.RemoteCreatedAt = existing.RemoteCreatedAt
		order.CreatedAt = existing.CreatedAt
		err = s.db.Save(&order).Error
	} else {
		err = s.db.Create(&order).Error
	}
	if err != nil {
		return false, err
	}

	if err := s.replaceLineItems(remote); err != nil {
		return false, err
	}
	return changed, nil
}

// replaceLineItems swaps the order's owned line-item set for the remote one
// inside a single transaction, so a crash mid-replacement cannot leave the
// order without items. A line item citing a product the mirror has never
// seen is retried without the product link rather than dropped.
func (s *Service) replaceLineItems(remote woocommerce.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", remote.ID).Delete(&models.OrderLineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete line items of order %d: %w", remote.ID, err)
		}

		for _, remoteItem := range remote.LineItems {
			item := models.OrderLineItem{
				OrderID:     remote.ID,
				ProductName: remoteItem.Name,
				Quantity:    remoteItem.Quantity,
				Total:       parseAmount(remoteItem.Total),
				Metadata:    convertMeta(remoteItem.MetaData),
			}
			if remoteItem.ProductID != 0 {
				productID := remoteItem.ProductID
				item.ProductID = &productID
			}

			if err := tx.SavePoint("line_item").Error; err != nil {
				return err
			}
			if err := tx.Create(&item).Error; err != nil {
				if item.ProductID == nil {
					return fmt.Errorf("failed to insert line item of order %d: %w", remote.ID, err)
				}
				// Dangling product reference: keep the descriptive
				// fields, drop the link.
				s.logger.Debug("Order %d line item references unknown product %d, storing without link", remote.ID, *item.ProductID)
				if err := tx.RollbackTo("line_item").Error; err != nil {
					return err
				}
				item.ID = 0
				item.ProductID = nil
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("failed to insert line item of order %d: %w", remote.ID, err)
				}
			}
		}
		return nil
	})
}

func (s *Service) notifyOrderChanged(orderID int64) {
	if s.publisher == nil {
		return
	}
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		return
	}
	if err := s.publisher.OrderChanged(&order); err != nil {
		s.logger.Error("Failed to publish change event for order %d: %v", orderID, err)
	}
}

func convertMeta(meta []woocommerce.MetaData) models.MetaBag {
	if len(meta) == 0 {
		return nil
	}
	bag := make(models.MetaBag, 0, len(meta))
	for _, entry := range meta {
		bag = append(bag, models.MetaEntry{Key: entry.Key, Value: entry.Value})
	}
	return bag
}
