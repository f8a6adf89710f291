// Package types defines core domain types for obsForge cycle validation.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"
	"time"
)

// Family is a forecast cycle family.
type Family string

// Supported cycle families.
const (
	FamilyGDAS Family = "gdas"
	FamilyGFS  Family = "gfs"
)

// AllFamilies returns every supported family in canonical order.
func AllFamilies() []Family {
	return []Family{FamilyGDAS, FamilyGFS}
}

// ParseFamily parses a family token, returning an error for unknown values.
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case FamilyGDAS:
		return FamilyGDAS, nil
	case FamilyGFS:
		return FamilyGFS, nil
	default:
		return "", fmt.Errorf("invalid cycle family: %q (must be gdas or gfs)", s)
	}
}

// CycleIdentity uniquely identifies one forecast-initialization instance.
// Constructed by the scanner from directory-name decomposition; immutable.
type CycleIdentity struct {
	// Family is the cycle family (gdas or gfs).
	Family Family `yaml:"family" json:"family"`
	// Date is the calendar day in YYYYMMDD format.
	Date string `yaml:"date" json:"date"`
	// Hour is the cycle boundary hour (0-23).
	Hour int `yaml:"hour" json:"hour"`
}

// Name returns the canonical cycle name, e.g. "gdas.20210831.18".
func (c CycleIdentity) Name() string {
	return fmt.Sprintf("%s.%s.%s", c.Family, c.Date, c.HourDir())
}

// HourDir returns the two-digit hour directory name.
func (c CycleIdentity) HourDir() string {
	return fmt.Sprintf("%02d", c.Hour)
}

// Dir returns the dated top-level directory name, e.g. "gdas.20210831".
func (c CycleIdentity) Dir() string {
	return fmt.Sprintf("%s.%s", c.Family, c.Date)
}

// Time returns the cycle boundary as a UTC timestamp.
func (c CycleIdentity) Time() (time.Time, error) {
	t, err := time.Parse("20060102", c.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cycle date %q: %w", c.Date, err)
	}
	return t.Add(time.Duration(c.Hour) * time.Hour), nil
}

// Validate checks the identity fields.
func (c CycleIdentity) Validate() error {
	if _, err := ParseFamily(string(c.Family)); err != nil {
		return err
	}
	if _, err := time.Parse("20060102", c.Date); err != nil {
		return fmt.Errorf("invalid cycle date %q: %w", c.Date, err)
	}
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("invalid cycle hour %d: must be 0-23", c.Hour)
	}
	return nil
}

// Before reports whether c sorts before other in the canonical
// (family, date, hour) batch ordering.
func (c CycleIdentity) Before(other CycleIdentity) bool {
	if c.Family != other.Family {
		return c.Family < other.Family
	}
	if c.Date != other.Date {
		return c.Date < other.Date
	}
	return c.Hour < other.Hour
}
