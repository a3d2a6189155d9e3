package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/customer-service/internal/domain"
	"github.com/spec-kit/customer-service/internal/events"
	"github.com/spec-kit/customer-service/internal/repository"
	"github.com/spec-kit/customer-service/internal/service"
	apperrors "github.com/spec-kit/customer-service/pkg/util/errorutil"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindAll(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByName(ctx context.Context, name string) ([]domain.Customer, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var fixedNow = time.Date(2025, time.April, 22, 21, 0, 0, 0, time.UTC)

func monthsAgo(n int) *time.Time {
	t := domain.MinusMonths(fixedNow, n)
	return &t
}

func newService(repo repository.CustomerRepository, dispatcher events.Dispatcher) *service.CustomerService {
	return service.NewCustomerService(service.CustomerDependencies{
		CustomerRepo: repo,
		Dispatcher:   dispatcher,
		Logger:       zap.NewNop(),
		Clock:        func() time.Time { return fixedNow },
	})
}

func assertDomainCode(t *testing.T, err error, code string, status int) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
	assert.Equal(t, status, domainErr.HTTPStatus)
}

func TestCustomerService_ListAll(t *testing.T) {
	ctx := context.Background()

	t.Run("annotates every customer with its tier", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("FindAll", ctx).Return([]domain.Customer{
			{ID: 1, Email: "bronze1@example.com", AnnualSpend: decimal.RequireFromString("500.00"), LastPurchaseDate: monthsAgo(1)},
			{ID: 2, Email: "gold2@example.com", AnnualSpend: decimal.RequireFromString("2500.00"), LastPurchaseDate: monthsAgo(10)},
			{ID: 3, Email: "bronze3@example.com", AnnualSpend: decimal.RequireFromString("3000.00"), LastPurchaseDate: monthsAgo(13)},
			{ID: 4, Email: "platinum4@example.com", AnnualSpend: decimal.RequireFromString("15000.00"), LastPurchaseDate: monthsAgo(5)},
			{ID: 5, Email: "bronze5@example.com", AnnualSpend: decimal.RequireFromString("12000.00"), LastPurchaseDate: monthsAgo(7)},
			{ID: 6, Email: "bronze6@example.com", AnnualSpend: decimal.RequireFromString("7500.00")},
		}, nil)

		views, err := newService(repo, nil).ListAll(ctx)
		require.NoError(t, err)

		tiers := make([]domain.Tier, 0, len(views))
		for _, v := range views {
			tiers = append(tiers, v.Tier)
		}
		assert.Equal(t, []domain.Tier{
			domain.TierBronze, domain.TierGold, domain.TierBronze,
			domain.TierPlatinum, domain.TierBronze, domain.TierBronze,
		}, tiers)
		repo.AssertExpectations(t)
	})

	t.Run("empty store yields empty slice", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("FindAll", ctx).Return([]domain.Customer{}, nil)

		views, err := newService(repo, nil).ListAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		boom := errors.New("connection refused")
		repo.On("FindAll", ctx).Return([]domain.Customer(nil), boom)

		_, err := newService(repo, nil).ListAll(ctx)
		assert.ErrorIs(t, err, boom)
	})
}

func TestCustomerService_ListByName(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	repo.On("FindByName", ctx, "John Doe").Return([]domain.Customer{
		{ID: 1, Name: "John Doe", AnnualSpend: decimal.RequireFromString("3000.00"), LastPurchaseDate: monthsAgo(10)},
	}, nil)
	repo.On("FindByName", ctx, "Nobody").Return([]domain.Customer{}, nil)

	svc := newService(repo, nil)

	views, err := svc.ListByName(ctx, "John Doe")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.TierGold, views[0].Tier)

	views, err = svc.ListByName(ctx, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestCustomerService_GetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	repo.On("FindByEmail", ctx, "peter.jones1@example.com").Return(&domain.Customer{
		ID: 9, Name: "Peter", AnnualSpend: decimal.RequireFromString("12000.00"), LastPurchaseDate: monthsAgo(4),
	}, nil)
	repo.On("FindByEmail", ctx, "nonexistent@example.com").Return(nil, pgx.ErrNoRows)

	svc := newService(repo, nil)

	view, err := svc.GetByEmail(ctx, "peter.jones1@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(9), view.ID)
	assert.Equal(t, domain.TierPlatinum, view.Tier)

	_, err = svc.GetByEmail(ctx, "nonexistent@example.com")
	assertDomainCode(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestCustomerService_GetByIDAndTier(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	repo.On("FindByID", ctx, int64(1)).Return(&domain.Customer{
		ID: 1, AnnualSpend: decimal.RequireFromString("3000.00"), LastPurchaseDate: monthsAgo(10),
	}, nil)
	repo.On("FindByID", ctx, int64(999)).Return(nil, pgx.ErrNoRows)

	svc := newService(repo, nil)

	view, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierGold, view.Tier)

	tier, err := svc.Tier(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierGold, tier)

	_, err = svc.GetByID(ctx, 999)
	assertDomainCode(t, err, apperrors.CodeNotFound, http.StatusNotFound)

	_, err = svc.Tier(ctx, 999)
	assertDomainCode(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()
	draft := domain.CustomerDraft{
		Name:        "NewCustomer",
		Email:       "new.c@example.com",
		AnnualSpend: decimal.RequireFromString("500.00"),
	}

	t.Run("store assigns id and event is published", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Customer")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Customer).ID = 42
			}).
			Return(nil)

		dispatcher := events.NewInMemoryDispatcher()
		var published []events.Event
		dispatcher.Subscribe(events.EventCustomerCreated, func(_ context.Context, e events.Event) error {
			published = append(published, e)
			return nil
		})

		created, err := newService(repo, dispatcher).Create(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, int64(42), created.ID)
		assert.Equal(t, "NewCustomer", created.Name)

		require.Len(t, published, 1)
		assert.Equal(t, int64(42), published[0].CustomerID)
		assert.NotEmpty(t, published[0].ID)
	})

	t.Run("duplicate email becomes conflict", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateEmail)

		_, err := newService(repo, nil).Create(ctx, draft)
		assertDomainCode(t, err, apperrors.CodeConflict, http.StatusConflict)
	})

	t.Run("event delivery failure does not fail the write", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		dispatcher := events.NewInMemoryDispatcher()
		dispatcher.Subscribe(events.EventCustomerCreated, func(context.Context, events.Event) error {
			return errors.New("redis down")
		})

		_, err := newService(repo, dispatcher).Create(ctx, draft)
		assert.NoError(t, err)
	})
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()
	draft := domain.CustomerDraft{
		Name:        "UpdatedName",
		Email:       "updated.n@example.com",
		AnnualSpend: decimal.RequireFromString("2500.00"),
	}

	t.Run("overwrites all fields", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("FindByID", ctx, int64(5)).Return(&domain.Customer{
			ID: 5, Name: "Old", Email: "old.n@example.com", AnnualSpend: decimal.NewFromInt(100), LastPurchaseDate: monthsAgo(1),
		}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Customer) bool {
			return c.ID == 5 && c.Name == "UpdatedName" && c.LastPurchaseDate == nil
		})).Return(nil)

		updated, err := newService(repo, nil).Update(ctx, 5, draft)
		require.NoError(t, err)
		assert.Equal(t, "updated.n@example.com", updated.Email)
		repo.AssertExpectations(t)
	})

	t.Run("missing id", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("FindByID", ctx, int64(404)).Return(nil, pgx.ErrNoRows)

		_, err := newService(repo, nil).Update(ctx, 404, draft)
		assertDomainCode(t, err, apperrors.CodeNotFound, http.StatusNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("row vanished between read and write", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("FindByID", ctx, int64(6)).Return(&domain.Customer{ID: 6}, nil)
		repo.On("Update", ctx, mock.Anything).Return(pgx.ErrNoRows)

		_, err := newService(repo, nil).Update(ctx, 6, draft)
		assertDomainCode(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("FindByID", ctx, int64(7)).Return(&domain.Customer{ID: 7}, nil)
		repo.On("Update", ctx, mock.Anything).Return(repository.ErrDuplicateEmail)

		_, err := newService(repo, nil).Update(ctx, 7, draft)
		assertDomainCode(t, err, apperrors.CodeConflict, http.StatusConflict)
	})
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing customer", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("ExistsByID", ctx, int64(3)).Return(true, nil)
		repo.On("DeleteByID", ctx, int64(3)).Return(nil)

		assert.NoError(t, newService(repo, nil).Delete(ctx, 3))
		repo.AssertExpectations(t)
	})

	t.Run("missing customer", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("ExistsByID", ctx, int64(999)).Return(false, nil)

		err := newService(repo, nil).Delete(ctx, 999)
		assertDomainCode(t, err, apperrors.CodeNotFound, http.StatusNotFound)
		repo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		boom := errors.New("timeout")
		repo.On("ExistsByID", ctx, int64(1)).Return(false, boom)

		assert.ErrorIs(t, newService(repo, nil).Delete(ctx, 1), boom)
	})
}
