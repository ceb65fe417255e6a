package ledger

import (
	"errors"
	"sync"
	"testing"

	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// serialTxRunner mimics the row lock: transactions run one at a time, the
// way FOR UPDATE serializes writers on the same stock level.
type serialTxRunner struct {
	mu sync.Mutex
}

func (r *serialTxRunner) InTransaction(fn func(tx *goqu.TxDatabase) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(nil)
}

type levelKey struct {
	tenantID, productID, locationID int
}

type fakeLevelStore struct {
	levels map[levelKey]*models.StockLevel
	nextID int
}

func newFakeLevelStore() *fakeLevelStore {
	return &fakeLevelStore{levels: make(map[levelKey]*models.StockLevel), nextID: 1}
}

func (f *fakeLevelStore) GetForUpdate(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*models.StockLevel, error) {
	if level, ok := f.levels[levelKey{tenantID, productID, locationID}]; ok {
		copied := *level
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLevelStore) Create(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*models.StockLevel, error) {
	level := &models.StockLevel{
		ID: f.nextID, TenantID: tenantID, ProductID: productID, LocationID: locationID,
	}
	f.nextID++
	f.levels[levelKey{tenantID, productID, locationID}] = level
	return level, nil
}

func (f *fakeLevelStore) SetQuantity(tx *goqu.TxDatabase, levelID, quantity int) error {
	for _, level := range f.levels {
		if level.ID == levelID {
			level.Quantity = quantity
			return nil
		}
	}
	return errors.New("level not found")
}

func (f *fakeLevelStore) GetByProductLocation(tenantID, productID, locationID int) (*models.StockLevel, error) {
	level, ok := f.levels[levelKey{tenantID, productID, locationID}]
	if !ok {
		return nil, apperrors.NewNotFoundError("stock level")
	}
	copied := *level
	return &copied, nil
}

func (f *fakeLevelStore) ListByLocation(tenantID, locationID int) ([]models.StockLevel, error) {
	return nil, nil
}

func (f *fakeLevelStore) ListBelowReorderPoint(tenantID int) ([]models.StockLevel, error) {
	return nil, nil
}

type fakeEventLog struct {
	events []models.InventoryEvent
}

func (f *fakeEventLog) Append(tx *goqu.TxDatabase, event *models.InventoryEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventLog) ListByProductLocation(tenantID, productID, locationID int, limit int) ([]models.InventoryEvent, error) {
	return f.events, nil
}

// Replaying the append-only log in insertion order must reproduce the stock
// level quantity exactly, and every stored running balance must equal the
// cumulative sum up to that event.
func TestRunningBalanceMatchesReplay(t *testing.T) {
	levels := newFakeLevelStore()
	log := &fakeEventLog{}
	service := NewService(&serialTxRunner{}, levels, log, zap.NewNop())

	moves := []struct {
		eventType models.EventType
		delta     int
	}{
		{models.EventStockReceived, 100},
		{models.EventSale, -12},
		{models.EventAdjustment, 5},
		{models.EventDamage, -3},
		{models.EventSale, -40},
		{models.EventStockReceived, 25},
		{models.EventExpiryLoss, -6},
	}

	for _, move := range moves {
		_, err := service.ApplyEvent(ApplyEventRequest{
			TenantID: 1, ProductID: 2, LocationID: 3,
			Type: move.eventType, QuantityDelta: move.delta, Actor: "tester",
		})
		require.NoError(t, err)
	}

	level, err := service.GetStockLevel(1, 2, 3)
	require.NoError(t, err)

	sum := 0
	for _, event := range log.events {
		sum += event.QuantityDelta
		assert.Equal(t, sum, event.RunningBalance, "running balance must equal cumulative sum")
	}
	assert.Equal(t, sum, level.Quantity, "projection must match the replayed log")
}

// Concurrent depleting writers racing on one stock level must never drive it
// negative; the losers fail with InsufficientStock instead.
func TestConcurrentDepletionsNeverGoNegative(t *testing.T) {
	levels := newFakeLevelStore()
	log := &fakeEventLog{}
	service := NewService(&serialTxRunner{}, levels, log, zap.NewNop())

	_, err := service.ApplyEvent(ApplyEventRequest{
		TenantID: 1, ProductID: 2, LocationID: 3,
		Type: models.EventStockReceived, QuantityDelta: 50, Actor: "tester",
	})
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	results := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ApplyEvent(ApplyEventRequest{
				TenantID: 1, ProductID: 2, LocationID: 3,
				Type: models.EventSale, QuantityDelta: -5, Actor: "pos",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *apperrors.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		failed++
	}

	assert.Equal(t, 10, succeeded, "exactly 50/5 depleting writers can win")
	assert.Equal(t, writers-10, failed)

	level, err := service.GetStockLevel(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, level.Quantity)

	sum := 0
	for _, event := range log.events {
		sum += event.QuantityDelta
		assert.GreaterOrEqual(t, event.RunningBalance, 0)
		assert.Equal(t, sum, event.RunningBalance)
	}
	assert.Equal(t, level.Quantity, sum)
}
