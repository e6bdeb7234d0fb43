package models

import "fmt"

// ParseError reports a row or price dimension that could not be converted to an entry.
// The row is dropped; processing continues.
type ParseError struct {
	Line          int
	Sku           string
	OfferTermCode string
	Field         string
	Err           error
}

func (e *ParseError) Error() string {
	loc := ""
	if e.Line > 0 {
		loc = fmt.Sprintf("line %d: ", e.Line)
	}
	return fmt.Sprintf("%sparse sku %q term %q field %s: %v", loc, e.Sku, e.OfferTermCode, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingBaselineError reports a sku without a qualifying on-demand entry.
type MissingBaselineError struct {
	Sku string
}

func (e *MissingBaselineError) Error() string {
	return fmt.Sprintf("sku %q: no on-demand baseline price", e.Sku)
}

// MissingRecurringFeeError reports an offering group with no recurring price component.
type MissingRecurringFeeError struct {
	Sku           string
	OfferTermCode string
	Key           string
}

func (e *MissingRecurringFeeError) Error() string {
	return fmt.Sprintf("sku %q term %q (%s): no recurring fee", e.Sku, e.OfferTermCode, e.Key)
}

// UnknownServiceError is returned alongside a fallback platform label.
type UnknownServiceError struct {
	ServiceCode string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service code %q", e.ServiceCode)
}
