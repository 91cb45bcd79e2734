package types

import "strings"

// NotAvailable is the sentinel the extraction oracle is instructed to emit
// for fields it cannot find. It only exists at the oracle boundary; inside
// the pipeline absence is modeled by Optional, not by string comparison.
const NotAvailable = "Not available"

// Optional is a string field with an explicit present/absent variant,
// distinguishing "not provided" from "provided but empty".
type Optional struct {
	value   string
	present bool
}

// Some returns a present Optional holding v.
func Some(v string) Optional {
	return Optional{value: v, present: true}
}

// None returns an absent Optional.
func None() Optional {
	return Optional{}
}

// FromOracle converts a raw oracle field into an Optional. Nil pointers,
// empty strings, and the literal sentinel all map to None.
func FromOracle(v *string) Optional {
	if v == nil {
		return None()
	}
	s := strings.TrimSpace(*v)
	if s == "" || strings.EqualFold(s, NotAvailable) || strings.EqualFold(s, "null") {
		return None()
	}
	return Some(s)
}

// Present reports whether a value was provided.
func (o Optional) Present() bool {
	return o.present
}

// Value returns the held value, or the empty string when absent.
func (o Optional) Value() string {
	return o.value
}

// Get returns the value and whether it is present.
func (o Optional) Get() (string, bool) {
	return o.value, o.present
}

// Or returns o when present, otherwise the fallback. The first present,
// non-empty candidate wins.
func (o Optional) Or(fallback Optional) Optional {
	if o.present && o.value != "" {
		return o
	}
	return fallback
}

// OrDefault returns the held value, or def when absent or empty.
func (o Optional) OrDefault(def string) string {
	if o.present && o.value != "" {
		return o.value
	}
	return def
}
