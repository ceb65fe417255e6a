package serials

import (
	"testing"
	"time"

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

type MockSerialRepository struct {
	mock.Mock
}

func (m *MockSerialRepository) Insert(tx *goqu.TxDatabase, serial *models.SerialNumber) (int, error) {
	args := m.Called(tx, serial)
	return args.Int(0), args.Error(1)
}

func (m *MockSerialRepository) Get(tenantID, serialID int) (*models.SerialNumber, error) {
	args := m.Called(tenantID, serialID)
	if serial := args.Get(0); serial != nil {
		return serial.(*models.SerialNumber), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSerialRepository) GetForUpdate(tx *goqu.TxDatabase, tenantID, serialID int) (*models.SerialNumber, error) {
	args := m.Called(tx, tenantID, serialID)
	if serial := args.Get(0); serial != nil {
		return serial.(*models.SerialNumber), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSerialRepository) ListByProduct(tenantID, productID int, status models.SerialStatus) ([]models.SerialNumber, error) {
	args := m.Called(tenantID, productID, status)
	return args.Get(0).([]models.SerialNumber), args.Error(1)
}

func (m *MockSerialRepository) UpdateStatus(tx *goqu.TxDatabase, tenantID, serialID int, status models.SerialStatus) error {
	args := m.Called(tx, tenantID, serialID, status)
	return args.Error(0)
}

func (m *MockSerialRepository) Delete(tx *goqu.TxDatabase, tenantID, serialID int) error {
	args := m.Called(tx, tenantID, serialID)
	return args.Error(0)
}

func newTestService(sr *MockSerialRepository) *Service {
	return NewService(stubTxRunner{}, sr, zap.NewNop())
}

func TestCreateSerialStoresWarrantyExpiry(t *testing.T) {
	sr := new(MockSerialRepository)
	service := newTestService(sr)

	sr.On("Insert", mock.Anything, mock.Anything).Return(5, nil).Once()

	before := time.Now()
	serial, err := service.Create(CreateSerialRequest{
		TenantID: 1, ProductID: 2, Serial: "SN-001", WarrantyMonths: 12,
	})

	require.NoError(t, err)
	assert.Equal(t, models.SerialInStock, serial.Status)
	require.NotNil(t, serial.WarrantyExpiry)
	expected := before.AddDate(0, 12, 0)
	assert.WithinDuration(t, expected, *serial.WarrantyExpiry, time.Minute)
}

func TestCreateSerialWithoutWarranty(t *testing.T) {
	sr := new(MockSerialRepository)
	service := newTestService(sr)

	sr.On("Insert", mock.Anything, mock.Anything).Return(5, nil).Once()

	serial, err := service.Create(CreateSerialRequest{TenantID: 1, ProductID: 2, Serial: "SN-002"})

	require.NoError(t, err)
	assert.Nil(t, serial.WarrantyExpiry)
}

func TestCreateSerialValidation(t *testing.T) {
	service := newTestService(new(MockSerialRepository))

	_, err := service.Create(CreateSerialRequest{TenantID: 1, ProductID: 2})
	var validation *apperrors.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = service.Create(CreateSerialRequest{TenantID: 1, ProductID: 2, Serial: "SN-1", WarrantyMonths: -1})
	assert.ErrorAs(t, err, &validation)
}

func TestCreateBulkRejectsDuplicateInRequest(t *testing.T) {
	service := newTestService(new(MockSerialRepository))

	_, err := service.CreateBulk([]CreateSerialRequest{
		{TenantID: 1, ProductID: 2, Serial: "SN-001"},
		{TenantID: 1, ProductID: 2, Serial: "SN-001"},
	})

	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestCreateBulkAllowsSameSerialAcrossProducts(t *testing.T) {
	sr := new(MockSerialRepository)
	service := newTestService(sr)

	sr.On("Insert", mock.Anything, mock.MatchedBy(func(serial *models.SerialNumber) bool {
		return serial.ProductID == 2 && serial.Serial == "SN-001"
	})).Return(1, nil).Once()
	sr.On("Insert", mock.Anything, mock.MatchedBy(func(serial *models.SerialNumber) bool {
		return serial.ProductID == 3 && serial.Serial == "SN-001"
	})).Return(2, nil).Once()

	serials, err := service.CreateBulk([]CreateSerialRequest{
		{TenantID: 1, ProductID: 2, Serial: "SN-001"},
		{TenantID: 1, ProductID: 3, Serial: "SN-001"},
	})

	require.NoError(t, err)
	assert.Len(t, serials, 2)
	sr.AssertExpectations(t)
}

func TestCreateBulkAllOrNothing(t *testing.T) {
	sr := new(MockSerialRepository)
	service := newTestService(sr)

	sr.On("Insert", mock.Anything, mock.Anything).Return(1, nil).Once()
	sr.On("Insert", mock.Anything, mock.Anything).
		Return(0, apperrors.NewConflictError("serial number", "duplicate value for serial_numbers_tenant_id_product_id_serial_key")).Once()

	_, err := service.CreateBulk([]CreateSerialRequest{
		{TenantID: 1, ProductID: 2, Serial: "SN-001"},
		{TenantID: 1, ProductID: 2, Serial: "SN-002"},
	})

	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	sr := new(MockSerialRepository)
	service := newTestService(sr)

	sr.On("GetForUpdate", mock.Anything, 1, 5).
		Return(&models.SerialNumber{ID: 5, TenantID: 1, Status: models.SerialInStock}, nil).Once()
	sr.On("UpdateStatus", mock.Anything, 1, 5, models.SerialSold).Return(nil).Once()

	serial, err := service.UpdateStatus(1, 5, models.SerialSold)

	assert.NoError(t, err)
	assert.Equal(t, models.SerialSold, serial.Status)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	sr := new(MockSerialRepository)
	service := newTestService(sr)

	sr.On("GetForUpdate", mock.Anything, 1, 5).
		Return(&models.SerialNumber{ID: 5, TenantID: 1, Status: models.SerialSold}, nil).Once()

	_, err := service.UpdateStatus(1, 5, models.SerialInStock)

	var transition *apperrors.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transition)
	sr.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteSoldSerialFails(t *testing.T) {
	sr := new(MockSerialRepository)
	service := newTestService(sr)

	sr.On("GetForUpdate", mock.Anything, 1, 5).
		Return(&models.SerialNumber{ID: 5, TenantID: 1, Status: models.SerialSold}, nil).Once()

	err := service.Delete(1, 5)

	var transition *apperrors.InvalidStateTransitionError
	assert.ErrorAs(t, err, &transition)
	sr.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteInStockSerialSucceeds(t *testing.T) {
	sr := new(MockSerialRepository)
	service := newTestService(sr)

	sr.On("GetForUpdate", mock.Anything, 1, 5).
		Return(&models.SerialNumber{ID: 5, TenantID: 1, Status: models.SerialInStock}, nil).Once()
	sr.On("Delete", mock.Anything, 1, 5).Return(nil).Once()

	err := service.Delete(1, 5)

	assert.NoError(t, err)
	sr.AssertExpectations(t)
}
