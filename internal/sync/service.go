package sync

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"mirror/internal/logger"
	"mirror/internal/models"
	"mirror/internal/woocommerce"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is the paginated fetch surface the reconciler consumes. Each List
// call returns one page of records plus the total item and page counts
// reported by the remote platform.
type Client interface {
	ListProducts(params url.Values, page, perPage int) ([]woocommerce.Product, int, int, error)
	ListVariations(productID int64) ([]woocommerce.Variation, error)
	ListOrders(params url.Values, page, perPage int) ([]woocommerce.Order, int, int, error)
}

// Publisher receives best-effort change notifications. Publish failures are
// logged and never fail a sync run.
type Publisher interface {
	OrderChanged(order *models.Order) error
}

// ProgressFunc receives human-readable status strings at coarse intervals.
// It is purely observational and never affects control flow.
type ProgressFunc func(msg string)

// Service reconciles the remote platform against the local mirror. It is the
// only component with persistence side effects.
type Service struct {
	db        *gorm.DB
	client    Client
	logger    *logger.Logger
	publisher Publisher
}

func New(db *gorm.DB, client Client, logger *logger.Logger, publisher Publisher) *Service {
	return &Service{
		db:        db,
		client:    client,
		logger:    logger,
		publisher: publisher,
	}
}

// ErrSyncInProgress is returned when another run holds the advisory lock.
var ErrSyncInProgress = errors.New("another sync run is already in progress")

const (
	lockName = "sync"
	lockTTL  = 30 * time.Minute

	orderWatermarkKey = "orders.watermark"

	progressInterval = 10
)

// acquireLock claims the advisory sync lock for runID. A held lock whose
// expiry has passed is treated as abandoned and taken over.
func (s *Service) acquireLock(runID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var lock models.SyncLock
		err := tx.First(&lock, "name = ?", lockName).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.SyncLock{
				Name:      lockName,
				RunID:     runID,
				ExpiresAt: time.Now().Add(lockTTL),
			}).Error
		case err != nil:
			return fmt.Errorf("failed to read sync lock: %w", err)
		}

		if lock.RunID != runID && lock.ExpiresAt.After(time.Now()) {
			return ErrSyncInProgress
		}

		return tx.Model(&models.SyncLock{}).Where("name = ?", lockName).Updates(map[string]interface{}{
			"run_id":     runID,
			"expires_at": time.Now().Add(lockTTL),
		}).Error
	})
}

func (s *Service) releaseLock(runID string) {
	if err := s.db.Where("name = ? AND run_id = ?", lockName, runID).Delete(&models.SyncLock{}).Error; err != nil {
		s.logger.Error("Failed to release sync lock: %v", err)
	}
}

func (s *Service) getState(key string) (string, bool) {
	var state models.SyncState
	if err := s.db.First(&state, "key = ?", key).Error; err != nil {
		return "", false
	}
	return state.Value, true
}

func (s *Service) setState(key, value string) {
	state := models.SyncState{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := s.db.Save(&state).Error; err != nil {
		s.logger.Error("Failed to persist sync state %s: %v", key, err)
	}
}

func (s *Service) report(progress ProgressFunc, format string, args ...interface{}) {
	if progress != nil {
		progress(fmt.Sprintf(format, args...))
	}
}

var changeTolerance = decimal.NewFromFloat(0.01)

// totalsDiffer compares two monetary amounts with a 0.01 tolerance so that
// float representation noise never flags an order as changed.
func totalsDiffer(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().GreaterThan(changeTolerance)
}

// parseAmount reads a remote money string ("123.45"). Empty or malformed
// values collapse to zero, matching how the remote API reports free orders.
func parseAmount(raw string) float64 {
	if raw == "" {
		return 0
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	result, _ := value.Float64()
	return result
}
