package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LimitPeriod is the calendar window MaxAmountPeriod is measured over.
type LimitPeriod string

const (
	PeriodDay   LimitPeriod = "day"
	PeriodWeek  LimitPeriod = "week"
	PeriodMonth LimitPeriod = "month"
	PeriodYear  LimitPeriod = "year"
)

// Start returns the beginning of the UTC calendar period containing t.
// Weeks start on Monday.
func (p LimitPeriod) Start(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodDay:
		return day
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// PaymentLimits are the variable recurring payment caps a client can attach
// to an InitiatePayment consent. Nil fields are not enforced.
type PaymentLimits struct {
	MaxIndividualAmount *decimal.Decimal `json:"max_individual_amount,omitempty"`
	MaxAmountPeriod     *decimal.Decimal `json:"max_amount_period,omitempty"`
	PeriodType          LimitPeriod      `json:"period_type,omitempty"`
	MaxPaymentsCount    *int             `json:"max_payments_count,omitempty"`
	ValidFrom           *time.Time       `json:"valid_from,omitempty"`
	ValidTo             *time.Time       `json:"valid_to,omitempty"`
}

// ConsentUsage summarizes non-rejected payments made under one consent.
type ConsentUsage struct {
	Payments       int
	PeriodPayments int
	PeriodAmount   decimal.Decimal
}

var ErrInvalidLimits = errors.New("invalid payment limits")

// Normalize validates l and fills the default period. A nil receiver is valid.
func (l *PaymentLimits) Normalize() error {
	if l == nil {
		return nil
	}
	if l.MaxIndividualAmount != nil && !ValidAmount(*l.MaxIndividualAmount) {
		return fmt.Errorf("%w: max_individual_amount must be a positive amount with at most %d decimals", ErrInvalidLimits, MoneyScale)
	}
	if l.MaxAmountPeriod != nil && !ValidAmount(*l.MaxAmountPeriod) {
		return fmt.Errorf("%w: max_amount_period must be a positive amount with at most %d decimals", ErrInvalidLimits, MoneyScale)
	}
	switch l.PeriodType {
	case "":
		l.PeriodType = PeriodMonth
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
	default:
		return fmt.Errorf("%w: unknown period_type %q", ErrInvalidLimits, l.PeriodType)
	}
	if l.MaxPaymentsCount != nil && *l.MaxPaymentsCount <= 0 {
		return fmt.Errorf("%w: max_payments_count must be positive", ErrInvalidLimits)
	}
	if l.ValidFrom != nil && l.ValidTo != nil && !l.ValidTo.After(*l.ValidFrom) {
		return fmt.Errorf("%w: valid_to must be after valid_from", ErrInvalidLimits)
	}
	return nil
}

// Allow checks one more payment of amount at now against l, given the usage
// recorded so far. It returns "" when the payment fits.
func (l *PaymentLimits) Allow(amount decimal.Decimal, usage ConsentUsage, now time.Time) string {
	if l == nil {
		return ""
	}
	if l.ValidFrom != nil && now.Before(*l.ValidFrom) {
		return "payment window has not opened"
	}
	if l.ValidTo != nil && !now.Before(*l.ValidTo) {
		return "payment window has closed"
	}
	if l.MaxIndividualAmount != nil && amount.GreaterThan(*l.MaxIndividualAmount) {
		return fmt.Sprintf("amount %s exceeds max individual amount %s", amount, l.MaxIndividualAmount)
	}
	if l.MaxAmountPeriod != nil && usage.PeriodAmount.Add(amount).GreaterThan(*l.MaxAmountPeriod) {
		return fmt.Sprintf("amount exceeds the %s limit %s (%s already used)", l.PeriodType, l.MaxAmountPeriod, usage.PeriodAmount)
	}
	if l.MaxPaymentsCount != nil && usage.Payments >= *l.MaxPaymentsCount {
		return fmt.Sprintf("consent allows at most %d payments", *l.MaxPaymentsCount)
	}
	return ""
}
