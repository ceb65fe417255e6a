package transfers

import (
	"errors"
	"testing"

	"stockroom/internal/ledger"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type stubTxRunner struct{}

func (stubTxRunner) InTransaction(fn func(tx *goqu.TxDatabase) error) error {
	return fn(nil)
}

type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Insert(tx *goqu.TxDatabase, transfer *models.StockTransfer) (int, error) {
	args := m.Called(tx, transfer)
	return args.Int(0), args.Error(1)
}

func (m *MockTransferRepository) Get(tenantID, transferID int) (*models.StockTransfer, error) {
	args := m.Called(tenantID, transferID)
	if transfer := args.Get(0); transfer != nil {
		return transfer.(*models.StockTransfer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransferRepository) GetForUpdate(tx *goqu.TxDatabase, tenantID, transferID int) (*models.StockTransfer, error) {
	args := m.Called(tx, tenantID, transferID)
	if transfer := args.Get(0); transfer != nil {
		return transfer.(*models.StockTransfer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransferRepository) List(tenantID int, status models.TransferStatus) ([]models.StockTransfer, error) {
	args := m.Called(tenantID, status)
	return args.Get(0).([]models.StockTransfer), args.Error(1)
}

func (m *MockTransferRepository) UpdateStatus(tx *goqu.TxDatabase, tenantID, transferID int, from []models.TransferStatus, to models.TransferStatus, record goqu.Record) error {
	args := m.Called(tx, tenantID, transferID, from, to, record)
	return args.Error(0)
}

func (m *MockTransferRepository) Delete(tx *goqu.TxDatabase, tenantID, transferID int) error {
	args := m.Called(tx, tenantID, transferID)
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

func newTestService(tr *MockTransferRepository, applier *MockApplier) *Service {
	return NewService(stubTxRunner{}, tr, applier, zap.NewNop())
}

func inTransit(quantity int) *models.StockTransfer {
	return &models.StockTransfer{
		ID: 42, TenantID: 1, ProductID: 2,
		FromLocationID: 10, ToLocationID: 20,
		Quantity: quantity, Status: models.TransferInTransit,
	}
}

func TestCreateTransferValidation(t *testing.T) {
	service := newTestService(new(MockTransferRepository), new(MockApplier))

	cases := []struct {
		name string
		req  CreateTransferRequest
	}{
		{"same locations", CreateTransferRequest{TenantID: 1, ProductID: 1, FromLocationID: 5, ToLocationID: 5, Quantity: 1}},
		{"zero quantity", CreateTransferRequest{TenantID: 1, ProductID: 1, FromLocationID: 5, ToLocationID: 6, Quantity: 0}},
		{"negative quantity", CreateTransferRequest{TenantID: 1, ProductID: 1, FromLocationID: 5, ToLocationID: 6, Quantity: -3}},
		{"missing product", CreateTransferRequest{TenantID: 1, FromLocationID: 5, ToLocationID: 6, Quantity: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(tc.req)
			var validation *apperrors.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestCompleteTransferAppliesBothSides(t *testing.T) {
	tr := new(MockTransferRepository)
	applier := new(MockApplier)
	service := newTestService(tr, applier)

	tr.On("GetForUpdate", mock.Anything, 1, 42).Return(inTransit(4), nil).Once()
	applier.On("ApplyEventTx", mock.Anything, mock.MatchedBy(func(req ledger.ApplyEventRequest) bool {
		return req.Type == models.EventTransferOut && req.QuantityDelta == -4 && req.LocationID == 10 &&
			req.Reference != nil && req.Reference.Type == models.RefTransfer && req.Reference.ID == 42
	})).Return(&models.InventoryEvent{}, nil).Once()
	applier.On("ApplyEventTx", mock.Anything, mock.MatchedBy(func(req ledger.ApplyEventRequest) bool {
		return req.Type == models.EventTransferIn && req.QuantityDelta == 4 && req.LocationID == 20
	})).Return(&models.InventoryEvent{}, nil).Once()
	tr.On("UpdateStatus", mock.Anything, 1, 42, mock.Anything, models.TransferCompleted, mock.Anything).Return(nil).Once()

	transfer, err := service.Complete(1, 42, "carol")

	assert.NoError(t, err)
	assert.Equal(t, models.TransferCompleted, transfer.Status)
	assert.NotNil(t, transfer.CompletedAt)
	tr.AssertExpectations(t)
	applier.AssertExpectations(t)
}

func TestCompleteTransferInsufficientStock(t *testing.T) {
	tr := new(MockTransferRepository)
	applier := new(MockApplier)
	service := newTestService(tr, applier)

	tr.On("GetForUpdate", mock.Anything, 1, 42).Return(inTransit(5), nil).Once()
	applier.On("ApplyEventTx", mock.Anything, mock.Anything).
		Return(nil, &apperrors.InsufficientStockError{ProductID: 2, LocationID: 10, Available: 3, Requested: 5}).Once()

	_, err := service.Complete(1, 42, "carol")

	var insufficient *apperrors.InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
	// The debit failed, so no credit and no status change may happen.
	applier.AssertNumberOfCalls(t, "ApplyEventTx", 1)
	tr.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteTransferFailureBetweenWritesAbortsAll(t *testing.T) {
	tr := new(MockTransferRepository)
	applier := new(MockApplier)
	service := newTestService(tr, applier)

	tr.On("GetForUpdate", mock.Anything, 1, 42).Return(inTransit(4), nil).Once()
	applier.On("ApplyEventTx", mock.Anything, mock.MatchedBy(func(req ledger.ApplyEventRequest) bool {
		return req.Type == models.EventTransferOut
	})).Return(&models.InventoryEvent{}, nil).Once()
	applier.On("ApplyEventTx", mock.Anything, mock.MatchedBy(func(req ledger.ApplyEventRequest) bool {
		return req.Type == models.EventTransferIn
	})).Return(nil, errors.New("connection reset")).Once()

	_, err := service.Complete(1, 42, "carol")

	// The error surfaces out of the transaction callback, which rolls back
	// the TRANSFER_OUT along with everything else.
	assert.Error(t, err)
	tr.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteTransferRejectsTerminalStates(t *testing.T) {
	for _, status := range []models.TransferStatus{models.TransferCompleted, models.TransferCancelled} {
		t.Run(string(status), func(t *testing.T) {
			tr := new(MockTransferRepository)
			applier := new(MockApplier)
			service := newTestService(tr, applier)

			transfer := inTransit(4)
			transfer.Status = status
			tr.On("GetForUpdate", mock.Anything, 1, 42).Return(transfer, nil).Once()

			_, err := service.Complete(1, 42, "carol")

			var transition *apperrors.InvalidStateTransitionError
			assert.ErrorAs(t, err, &transition)
			applier.AssertNotCalled(t, "ApplyEventTx", mock.Anything, mock.Anything)
		})
	}
}

func TestCancelTransferProducesNoEvents(t *testing.T) {
	tr := new(MockTransferRepository)
	applier := new(MockApplier)
	service := newTestService(tr, applier)

	transfer := inTransit(4)
	transfer.Status = models.TransferPending
	tr.On("GetForUpdate", mock.Anything, 1, 42).Return(transfer, nil).Once()
	tr.On("UpdateStatus", mock.Anything, 1, 42, mock.Anything, models.TransferCancelled, mock.Anything).Return(nil).Once()

	err := service.Cancel(1, 42)

	assert.NoError(t, err)
	applier.AssertNotCalled(t, "ApplyEventTx", mock.Anything, mock.Anything)
	tr.AssertExpectations(t)
}

func TestCancelCompletedTransferFails(t *testing.T) {
	tr := new(MockTransferRepository)
	service := newTestService(tr, new(MockApplier))

	transfer := inTransit(4)
	transfer.Status = models.TransferCompleted
	tr.On("GetForUpdate", mock.Anything, 1, 42).Return(transfer, nil).Once()

	err := service.Cancel(1, 42)

	var transition *apperrors.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestStartRequiresPending(t *testing.T) {
	tr := new(MockTransferRepository)
	service := newTestService(tr, new(MockApplier))

	tr.On("GetForUpdate", mock.Anything, 1, 42).Return(inTransit(4), nil).Once()

	err := service.Start(1, 42)

	var transition *apperrors.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestDeleteCompletedTransferFails(t *testing.T) {
	tr := new(MockTransferRepository)
	service := newTestService(tr, new(MockApplier))

	transfer := inTransit(4)
	transfer.Status = models.TransferCompleted
	tr.On("GetForUpdate", mock.Anything, 1, 42).Return(transfer, nil).Once()

	err := service.Delete(1, 42)

	var transition *apperrors.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transition)
	tr.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteCancelledTransferSucceeds(t *testing.T) {
	tr := new(MockTransferRepository)
	service := newTestService(tr, new(MockApplier))

	transfer := inTransit(4)
	transfer.Status = models.TransferCancelled
	tr.On("GetForUpdate", mock.Anything, 1, 42).Return(transfer, nil).Once()
	tr.On("Delete", mock.Anything, 1, 42).Return(nil).Once()

	err := service.Delete(1, 42)

	assert.NoError(t, err)
	tr.AssertExpectations(t)
}
