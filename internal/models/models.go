// Package models provides domain models for the dividend screener.
package models

import (
	"time"
)

// Grade represents an investability letter grade.
type Grade string

const (
	GradeAPlus   Grade = "A+"
	GradeA       Grade = "A"
	GradeB       Grade = "B"
	GradeC       Grade = "C"
	GradeD       Grade = "D"
	GradeF       Grade = "F"
	GradeUnknown Grade = "?"
)

// Date is a calendar date with no time-of-day component.
// It marshals to and from ISO (YYYY-MM-DD) strings in CSV files.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses an ISO formatted date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

// Equal reports whether two dates are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Between reports whether d falls in [start, end] inclusive.
func (d Date) Between(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// MarshalCSV implements gocsv marshaling.
func (d Date) MarshalCSV() (string, error) {
	return d.String(), nil
}

// UnmarshalCSV implements gocsv unmarshaling.
func (d *Date) UnmarshalCSV(s string) error {
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DividendEvent represents one upcoming ex-dividend opportunity.
// CashAmount and Price are positive whenever DividendYield is set.
type DividendEvent struct {
	Ticker         string  `csv:"Ticker" json:"ticker"`
	ExDividendDate Date    `csv:"Ex-Dividend Date" json:"ex_dividend_date"`
	CashAmount     float64 `csv:"Dividend Amount" json:"cash_amount"`
	Price          float64 `csv:"Price" json:"price"`
	DividendYield  float64 `csv:"Dividend Yield" json:"dividend_yield_pct"`
	Company        string  `csv:"Company" json:"company"`
	Score          float64 `csv:"-" json:"score,omitempty"`
	Grade          Grade   `csv:"-" json:"grade,omitempty"`
}

// Key returns the natural key of the event.
func (e DividendEvent) Key() EventKey {
	return EventKey{Ticker: e.Ticker, ExDividendDate: e.ExDividendDate.String()}
}

// EventKey uniquely identifies a dividend event.
type EventKey struct {
	Ticker         string
	ExDividendDate string
}

// IgnoreEntry is a suppression record for a rejected ticker.
type IgnoreEntry struct {
	Ticker      string `csv:"Ticker"`
	IgnoreUntil Date   `csv:"IgnoreUntil"`
}

// MarketInfo holds best-effort market metadata for a single ticker.
// Any field may be its zero value when the upstream source omits it.
type MarketInfo struct {
	Symbol          string
	Name            string
	Price           float64
	Market          string
	QuoteType       string
	BusinessSummary string
	MarketCap       float64
}

// ScoreInputs are the inputs to the investability score. A zero value in
// any field forces score 0, grade F.
type ScoreInputs struct {
	YieldPct       float64
	CurrentPrice   float64
	MovingAvg20    float64
	DividendAmount float64
}

// FilterConfig is the immutable input to one screening run.
type FilterConfig struct {
	MinYield          float64
	ExcludeForeign    bool
	ExcludeADR        bool
	ExcludeDistressed bool
	StrictFiltering   bool
	DaysAhead         int
}

// DefaultFilterConfig returns the default screening configuration.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinYield:          0,
		ExcludeForeign:    true,
		ExcludeADR:        true,
		ExcludeDistressed: true,
		StrictFiltering:   true,
		DaysAhead:         14,
	}
}

// Normalize clamps the configuration into its supported ranges.
func (c FilterConfig) Normalize() FilterConfig {
	if c.DaysAhead < 1 {
		c.DaysAhead = 1
	}
	if c.DaysAhead > 30 {
		c.DaysAhead = 30
	}
	if c.MinYield < 0 {
		c.MinYield = 0
	}
	return c
}

// PriceBar represents one day of price history with rolling averages.
type PriceBar struct {
	Date  Date
	Close float64
	MA5   float64
	MA20  float64
}

// RawDividend is a single record from the dividend-events source.
type RawDividend struct {
	ID              string  `json:"id"`
	Ticker          string  `json:"ticker"`
	CashAmount      float64 `json:"cash_amount"`
	ExDividendDate  string  `json:"ex_dividend_date"`
	DeclarationDate string  `json:"declaration_date"`
	PayDate         string  `json:"pay_date"`
	Frequency       int     `json:"frequency"`
	DividendType    string  `json:"dividend_type"`
	Currency        string  `json:"currency"`
}
