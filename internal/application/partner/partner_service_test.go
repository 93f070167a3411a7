package partner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/doorsets/backend/internal/application/common"
	"github.com/doorsets/backend/internal/domain/partner"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/export"
	"github.com/doorsets/backend/internal/infrastructure/persistence"
	"github.com/doorsets/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uint) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	args := m.Called(ctx, c)
	if c.ID == 0 {
		c.ID = 7
	}
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func newMockCustomerService() (*CustomerService, *MockCustomerRepository, *testutil.EventRecorder) {
	repo := new(MockCustomerRepository)
	events := testutil.NewEventRecorder()
	return NewCustomerService(repo, common.NewSupport(events, nil, 0, nil)), repo, events
}

func existingCustomer(id uint) *partner.Customer {
	c, _ := partner.NewCustomer(partner.Contact{Name: "Hillside Joinery"})
	c.ID = id
	return c
}

func TestCustomerService_Create(t *testing.T) {
	svc, repo, events := newMockCustomerService()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Customer")).Return(nil)

	resp, err := svc.Create(context.Background(), CustomerRequest{ContactRequest{
		Name:  "  Hillside Joinery ",
		Email: "Orders@Hillside.example",
	}})
	require.NoError(t, err)
	assert.Equal(t, uint(7), resp.ID)
	assert.Equal(t, "Hillside Joinery", resp.Name)
	assert.Equal(t, "orders@hillside.example", resp.Email)
	assert.Equal(t, []string{"Customer.created"}, events.Types())
	repo.AssertExpectations(t)
}

func TestCustomerService_CreateRejectsEmptyName(t *testing.T) {
	svc, repo, events := newMockCustomerService()

	_, err := svc.Create(context.Background(), CustomerRequest{ContactRequest{Name: ""}})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Contains(t, err.Error(), "name is required")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, events.Events())
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("in use", func(t *testing.T) {
		svc, repo, events := newMockCustomerService()
		repo.On("FindByID", ctx, uint(3)).Return(existingCustomer(3), nil)
		repo.On("IsReferenced", ctx, uint(3)).Return(true, nil)

		err := svc.Delete(ctx, 3)
		assert.ErrorIs(t, err, shared.ErrInUse)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Empty(t, events.Events())
	})

	t.Run("success publishes deleted event", func(t *testing.T) {
		svc, repo, events := newMockCustomerService()
		repo.On("FindByID", ctx, uint(3)).Return(existingCustomer(3), nil)
		repo.On("IsReferenced", ctx, uint(3)).Return(false, nil)
		repo.On("Delete", ctx, uint(3)).Return(nil)

		require.NoError(t, svc.Delete(ctx, 3))
		assert.Equal(t, []string{"Customer.deleted"}, events.Types())
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo, _ := newMockCustomerService()
		repo.On("FindByID", ctx, uint(9)).Return(nil, shared.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, 9), shared.ErrNotFound)
	})
}

func TestCustomerService_GetAllPropagatesErrors(t *testing.T) {
	svc, repo, _ := newMockCustomerService()
	boom := errors.New("connection reset")
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]partner.Customer(nil), int64(0), boom)

	_, err := svc.GetAll(context.Background(), common.ListQuery{})
	assert.ErrorIs(t, err, boom)
}

func TestSupplierService(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	bus, qc := testutil.NewCachingBus(t)
	svc := NewSupplierService(persistence.NewGormSupplierRepository(db), common.NewSupport(bus, qc, time.Minute, nil))
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }

	created, err := svc.Create(ctx, SupplierRequest{
		ContactRequest: ContactRequest{Name: "Acme Hardware", ContactName: "Jo Smith", Email: "sales@acme.example"},
		Website:        "https://acme.example",
		LeadTimeDays:   10,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	t.Run("search over contact", func(t *testing.T) {
		page, err := svc.GetAll(ctx, common.ListQuery{Search: "smith"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Acme Hardware", page.Items[0].Name)
	})

	t.Run("update is visible after cache invalidation", func(t *testing.T) {
		_, err := svc.Update(ctx, created.ID, SupplierRequest{
			ContactRequest: ContactRequest{Name: "Acme Ltd"},
			LeadTimeDays:   5,
		})
		require.NoError(t, err)
		page, err := svc.GetAll(ctx, common.ListQuery{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Acme Ltd", page.Items[0].Name)
		assert.Equal(t, 5, page.Items[0].LeadTimeDays)
	})

	t.Run("negative lead time", func(t *testing.T) {
		_, err := svc.Create(ctx, SupplierRequest{ContactRequest: ContactRequest{Name: "Bad"}, LeadTimeDays: -1})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("export", func(t *testing.T) {
		file, err := svc.Export(ctx, common.ListQuery{}, export.FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, "suppliers-20240201.csv", file.FileName)
		assert.True(t, strings.HasPrefix(string(file.Content), "ID,Name,Contact,Email,Phone,Address,Website,Lead Time (days)"))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, created.ID))
		_, err := svc.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
