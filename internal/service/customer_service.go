package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/customer-service/internal/domain"
	"github.com/spec-kit/customer-service/internal/events"
	"github.com/spec-kit/customer-service/internal/repository"
	apperrors "github.com/spec-kit/customer-service/pkg/util/errorutil"
)

// CustomerService coordinates customer workflows and tier annotation.
type CustomerService struct {
	customers  repository.CustomerRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// CustomerDependencies bundles collaborators for the customer service.
type CustomerDependencies struct {
	CustomerRepo repository.CustomerRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	// Clock supplies the tier reference time; defaults to domain.LocalNow.
	Clock func() time.Time
}

// NewCustomerService constructs the service.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	svc := &CustomerService{
		customers:  deps.CustomerRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = domain.LocalNow
	}
	return svc
}

// ListAll returns every customer with its current tier.
func (s *CustomerService) ListAll(ctx context.Context) ([]domain.CustomerView, error) {
	customers, err := s.customers.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return s.views(customers), nil
}

// ListByName returns customers whose name equals name exactly.
func (s *CustomerService) ListByName(ctx context.Context, name string) ([]domain.CustomerView, error) {
	customers, err := s.customers.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list customers by name: %w", err)
	}
	return s.views(customers), nil
}

// GetByEmail returns the customer registered under email.
func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*domain.CustomerView, error) {
	customer, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, map[string]any{"email": email})
	}
	view := domain.NewCustomerView(*customer, s.now())
	return &view, nil
}

// GetByID returns the customer with id annotated with its tier.
func (s *CustomerService) GetByID(ctx context.Context, id int64) (*domain.CustomerView, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := domain.NewCustomerView(*customer, s.now())
	return &view, nil
}

// Tier computes the current tier of the customer with id.
func (s *CustomerService) Tier(ctx context.Context, id int64) (domain.Tier, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return "", err
	}
	return domain.CalculateTier(&customer.AnnualSpend, customer.LastPurchaseDate, s.now()), nil
}

// Create inserts a new customer. Email uniqueness is left to the store.
func (s *CustomerService) Create(ctx context.Context, draft domain.CustomerDraft) (*domain.Customer, error) {
	customer := &domain.Customer{}
	draft.Apply(customer)

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, conflictOr(err, draft.Email, "create customer")
	}

	s.publishEvent(ctx, events.EventCustomerCreated, customer.ID, snapshot(customer))
	return customer, nil
}

// Update replaces every mutable field of the customer with id.
func (s *CustomerService) Update(ctx context.Context, id int64, draft domain.CustomerDraft) (*domain.Customer, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	draft.Apply(customer)
	if err := s.customers.Update(ctx, customer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundOr(err, map[string]any{"id": id})
		}
		return nil, conflictOr(err, draft.Email, "update customer")
	}

	s.publishEvent(ctx, events.EventCustomerUpdated, customer.ID, snapshot(customer))
	return customer, nil
}

// Delete removes the customer with id.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	exists, err := s.customers.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check customer: %w", err)
	}
	if !exists {
		return apperrors.NewNotFound("customer", map[string]any{"id": id})
	}

	if err := s.customers.DeleteByID(ctx, id); err != nil {
		return notFoundOr(err, map[string]any{"id": id})
	}

	s.publishEvent(ctx, events.EventCustomerDeleted, id, nil)
	return nil
}

func (s *CustomerService) findByID(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, map[string]any{"id": id})
	}
	return customer, nil
}

func (s *CustomerService) views(customers []domain.Customer) []domain.CustomerView {
	now := s.now()
	result := make([]domain.CustomerView, 0, len(customers))
	for _, c := range customers {
		result = append(result, domain.NewCustomerView(c, now))
	}
	return result
}

func (s *CustomerService) publishEvent(ctx context.Context, eventType events.EventType, customerID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		CustomerID: customerID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("customer event delivery failed",
			zap.String("event_type", string(eventType)),
			zap.Int64("customer_id", customerID),
			zap.Error(err))
	}
}

func snapshot(c *domain.Customer) events.CustomerSnapshotPayload {
	payload := events.CustomerSnapshotPayload{
		Name:        c.Name,
		Email:       c.Email,
		AnnualSpend: c.AnnualSpend,
	}
	if c.LastPurchaseDate != nil {
		formatted := domain.FormatLocalDateTime(*c.LastPurchaseDate)
		payload.LastPurchaseDate = &formatted
	}
	return payload
}

func notFoundOr(err error, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("customer", details)
	}
	return err
}

func conflictOr(err error, email, op string) error {
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return apperrors.NewConflict("email already in use", map[string]any{"email": email})
	}
	return fmt.Errorf("%s: %w", op, err)
}
