package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the persisted customer record.
type Customer struct {
	ID               int64
	Name             string
	Email            string
	AnnualSpend      decimal.Decimal
	LastPurchaseDate *time.Time
}

// CustomerDraft carries the caller-supplied fields for create and full-replace update.
type CustomerDraft struct {
	Name             string
	Email            string
	AnnualSpend      decimal.Decimal
	LastPurchaseDate *time.Time
}

// Apply overwrites every mutable field of c with the draft's values.
func (d CustomerDraft) Apply(c *Customer) {
	c.Name = d.Name
	c.Email = d.Email
	c.AnnualSpend = d.AnnualSpend
	c.LastPurchaseDate = d.LastPurchaseDate
}

// CustomerView is a customer annotated with the tier computed at read time.
type CustomerView struct {
	Customer
	Tier Tier
}

// NewCustomerView computes the tier of c relative to now.
func NewCustomerView(c Customer, now time.Time) CustomerView {
	return CustomerView{
		Customer: c,
		Tier:     CalculateTier(&c.AnnualSpend, c.LastPurchaseDate, now),
	}
}
