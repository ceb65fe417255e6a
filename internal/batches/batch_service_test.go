package batches

import (
	"testing"

	"stockroom/internal/ledger"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTxRunner struct{}

func (stubTxRunner) InTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return fn(nil)
}

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Insert(tx *goqu.TxDatabase, batch *models.Batch) (int, error) {
	args := m.Called(tx, batch)
	return args.Int(0), args.Error(1)
}

func (m *MockBatchRepository) Get(tenantID, batchID int) (*models.Batch, error) {
	args := m.Called(tenantID, batchID)
	if batch := args.Get(0); batch != nil {
		return batch.(*models.Batch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBatchRepository) GetForUpdate(tx *goqu.TxDatabase, tenantID, batchID int) (*models.Batch, error) {
	args := m.Called(tx, tenantID, batchID)
	if batch := args.Get(0); batch != nil {
		return batch.(*models.Batch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBatchRepository) ListByProduct(tenantID, productID int) ([]models.Batch, error) {
	args := m.Called(tenantID, productID)
	return args.Get(0).([]models.Batch), args.Error(1)
}

func (m *MockBatchRepository) ListWithExpiry(tenantID int) ([]models.Batch, error) {
	args := m.Called(tenantID)
	return args.Get(0).([]models.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindStockLevelID(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*int, error) {
	args := m.Called(tx, tenantID, productID, locationID)
	if id := args.Get(0); id != nil {
		return id.(*int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBatchRepository) SetReservedQuantity(tx *goqu.TxDatabase, tenantID, batchID, reserved int) error {
	args := m.Called(tx, tenantID, batchID, reserved)
	return args.Error(0)
}

func (m *MockBatchRepository) CountSerials(tx *goqu.TxDatabase, tenantID, batchID int) (int, error) {
	args := m.Called(tx, tenantID, batchID)
	return args.Int(0), args.Error(1)
}

func (m *MockBatchRepository) Delete(tx *goqu.TxDatabase, tenantID, batchID int) error {
	args := m.Called(tx, tenantID, batchID)
	return args.Error(0)
}

type MockApplier struct {
	mock.Mock
}

func (m *MockApplier) ApplyEventTx(tx *goqu.TxDatabase, req ledger.ApplyEventRequest) (*models.InventoryEvent, error) {
	args := m.Called(tx, req)
	if event := args.Get(0); event != nil {
		return event.(*models.InventoryEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(br *MockBatchRepository, applier *MockApplier) *Service {
	return NewService(stubTxRunner{}, br, applier, zap.NewNop())
}

func TestReceiveBatchPostsReceiptAndInserts(t *testing.T) {
	br := new(MockBatchRepository)
	applier := new(MockApplier)
	service := newTestService(br, applier)

	levelID := 7
	applier.On("ApplyEventTx", mock.Anything, mock.MatchedBy(func(req ledger.ApplyEventRequest) bool {
		return req.Type == models.EventStockReceived && req.QuantityDelta == 30 && req.LocationID == 3
	})).Return(&models.InventoryEvent{}, nil).Once()
	br.On("FindStockLevelID", mock.Anything, 1, 2, 3).Return(&levelID, nil).Once()
	br.On("Insert", mock.Anything, mock.MatchedBy(func(batch *models.Batch) bool {
		return batch.BatchNumber == "B1" && batch.Quantity == 30 && batch.ReservedQuantity == 0 &&
			batch.StockLevelID != nil && *batch.StockLevelID == 7
	})).Return(11, nil).Once()

	batch, err := service.Receive(ReceiveBatchRequest{
		TenantID: 1, ProductID: 2, LocationID: 3,
		BatchNumber: "B1", Quantity: 30, UnitCost: 4.5, Actor: "dana",
	})

	assert.NoError(t, err)
	assert.Equal(t, 11, batch.ID)
	require.NotNil(t, batch.StockLevelID)
	assert.Equal(t, 7, *batch.StockLevelID)
	br.AssertExpectations(t)
	applier.AssertExpectations(t)
}

func TestReceiveBatchWithoutLocationSkipsLedger(t *testing.T) {
	br := new(MockBatchRepository)
	applier := new(MockApplier)
	service := newTestService(br, applier)

	br.On("Insert", mock.Anything, mock.Anything).Return(12, nil).Once()

	batch, err := service.Receive(ReceiveBatchRequest{
		TenantID: 1, ProductID: 2,
		BatchNumber: "B2", Quantity: 10, Actor: "dana",
	})

	assert.NoError(t, err)
	assert.Nil(t, batch.StockLevelID)
	applier.AssertNotCalled(t, "ApplyEventTx", mock.Anything, mock.Anything)
	br.AssertNotCalled(t, "FindStockLevelID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReceiveDuplicateBatchNumberConflicts(t *testing.T) {
	br := new(MockBatchRepository)
	applier := new(MockApplier)
	service := newTestService(br, applier)

	levelID := 7
	applier.On("ApplyEventTx", mock.Anything, mock.Anything).Return(&models.InventoryEvent{}, nil).Once()
	br.On("FindStockLevelID", mock.Anything, 1, 2, 3).Return(&levelID, nil).Once()
	br.On("Insert", mock.Anything, mock.Anything).
		Return(0, apperrors.NewConflictError("batch", "duplicate value for batches_tenant_id_product_id_batch_number_key")).Once()

	_, err := service.Receive(ReceiveBatchRequest{
		TenantID: 1, ProductID: 2, LocationID: 3,
		BatchNumber: "B1", Quantity: 30, Actor: "dana",
	})

	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestReceiveBatchValidation(t *testing.T) {
	service := newTestService(new(MockBatchRepository), new(MockApplier))

	_, err := service.Receive(ReceiveBatchRequest{TenantID: 1, ProductID: 2, Quantity: 5})
	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = service.Receive(ReceiveBatchRequest{TenantID: 1, ProductID: 2, BatchNumber: "B1", Quantity: 0})
	assert.ErrorAs(t, err, &validation)
}

func TestReserveWithinAvailable(t *testing.T) {
	br := new(MockBatchRepository)
	service := newTestService(br, new(MockApplier))

	br.On("GetForUpdate", mock.Anything, 1, 11).
		Return(&models.Batch{ID: 11, TenantID: 1, Quantity: 30, ReservedQuantity: 10}, nil).Once()
	br.On("SetReservedQuantity", mock.Anything, 1, 11, 25).Return(nil).Once()

	batch, err := service.Reserve(1, 11, 15)

	assert.NoError(t, err)
	assert.Equal(t, 25, batch.ReservedQuantity)
	assert.Equal(t, 5, batch.AvailableQuantity())
}

func TestReserveBeyondQuantityConflicts(t *testing.T) {
	br := new(MockBatchRepository)
	service := newTestService(br, new(MockApplier))

	br.On("GetForUpdate", mock.Anything, 1, 11).
		Return(&models.Batch{ID: 11, TenantID: 1, Quantity: 30, ReservedQuantity: 10}, nil).Once()

	_, err := service.Reserve(1, 11, 21)

	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)
	br.AssertNotCalled(t, "SetReservedQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReleaseMoreThanReservedConflicts(t *testing.T) {
	br := new(MockBatchRepository)
	service := newTestService(br, new(MockApplier))

	br.On("GetForUpdate", mock.Anything, 1, 11).
		Return(&models.Batch{ID: 11, TenantID: 1, Quantity: 30, ReservedQuantity: 10}, nil).Once()

	_, err := service.Release(1, 11, 11)

	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestDeleteBatchWithRemainingQuantityFails(t *testing.T) {
	br := new(MockBatchRepository)
	service := newTestService(br, new(MockApplier))

	br.On("GetForUpdate", mock.Anything, 1, 11).
		Return(&models.Batch{ID: 11, TenantID: 1, Quantity: 3}, nil).Once()

	err := service.Delete(1, 11)

	var transition *apperrors.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transition)
	br.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteBatchWithSerialsFails(t *testing.T) {
	br := new(MockBatchRepository)
	service := newTestService(br, new(MockApplier))

	br.On("GetForUpdate", mock.Anything, 1, 11).
		Return(&models.Batch{ID: 11, TenantID: 1, Quantity: 0}, nil).Once()
	br.On("CountSerials", mock.Anything, 1, 11).Return(2, nil).Once()

	err := service.Delete(1, 11)

	var transition *apperrors.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transition)
	br.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteEmptyBatchSucceeds(t *testing.T) {
	br := new(MockBatchRepository)
	service := newTestService(br, new(MockApplier))

	br.On("GetForUpdate", mock.Anything, 1, 11).
		Return(&models.Batch{ID: 11, TenantID: 1, Quantity: 0}, nil).Once()
	br.On("CountSerials", mock.Anything, 1, 11).Return(0, nil).Once()
	br.On("Delete", mock.Anything, 1, 11).Return(nil).Once()

	err := service.Delete(1, 11)

	assert.NoError(t, err)
	br.AssertExpectations(t)
}
