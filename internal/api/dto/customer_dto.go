package dto

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/customer-service/internal/domain"
)

func init() {
	// Spend is rendered as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// CustomerRequest is the draft payload for POST and PUT /customers.
// Any identifier in the body is ignored.
type CustomerRequest struct {
	Name             string           `json:"name" validate:"notblank,max=100"`
	Email            string           `json:"email" validate:"notblank,max=255,email"`
	AnnualSpend      *decimal.Decimal `json:"annualSpend" validate:"required"`
	LastPurchaseDate *LocalDateTime   `json:"lastPurchaseDate"`
}

// ToDraft converts a validated request into a domain draft.
func (r CustomerRequest) ToDraft() domain.CustomerDraft {
	draft := domain.CustomerDraft{
		Name:             r.Name,
		Email:            r.Email,
		LastPurchaseDate: r.LastPurchaseDate.TimePtr(),
	}
	if r.AnnualSpend != nil {
		draft.AnnualSpend = *r.AnnualSpend
	}
	return draft
}

// CustomerView is the tier-annotated read model.
type CustomerView struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	AnnualSpend      decimal.Decimal `json:"annualSpend"`
	LastPurchaseDate *LocalDateTime  `json:"lastPurchaseDate"`
	MembershipTier   domain.Tier     `json:"membershipTier"`
}

// CustomerResponse is the persisted record returned by create and update.
// It carries customerId rather than id and has no tier.
type CustomerResponse struct {
	CustomerID       int64           `json:"customerId"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	AnnualSpend      decimal.Decimal `json:"annualSpend"`
	LastPurchaseDate *LocalDateTime  `json:"lastPurchaseDate"`
}

// NewCustomerView builds the read model.
func NewCustomerView(v domain.CustomerView) CustomerView {
	return CustomerView{
		ID:               v.ID,
		Name:             v.Name,
		Email:            v.Email,
		AnnualSpend:      v.AnnualSpend,
		LastPurchaseDate: NewLocalDateTime(v.LastPurchaseDate),
		MembershipTier:   v.Tier,
	}
}

// NewCustomerViews builds read models preserving order.
func NewCustomerViews(views []domain.CustomerView) []CustomerView {
	result := make([]CustomerView, 0, len(views))
	for _, v := range views {
		result = append(result, NewCustomerView(v))
	}
	return result
}

// NewCustomerResponse builds the persisted-record response.
func NewCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:       c.ID,
		Name:             c.Name,
		Email:            c.Email,
		AnnualSpend:      c.AnnualSpend,
		LastPurchaseDate: NewLocalDateTime(c.LastPurchaseDate),
	}
}
