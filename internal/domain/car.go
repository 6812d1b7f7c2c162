package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultCarImage   = "images/default.jpg"
	DefaultCarFeature = "Standard Features"
	DefaultCarType    = "CAR"
)

type Car struct {
	ID                 int64
	Name               string
	PricePerDay        decimal.Decimal
	Image              string
	Features           []string
	Available          bool
	Type               string
	RegistrationNumber string
	CreatedAt          time.Time
}

// Validate fills catalog defaults and rejects cars that cannot be rented out.
func (c *Car) Validate() error {
	if c.Name == "" {
		return InvalidInput("name is required")
	}
	if c.PricePerDay.IsNegative() {
		return InvalidInput("pricePerDay must not be negative")
	}
	if c.Image == "" {
		c.Image = DefaultCarImage
	}
	if len(c.Features) == 0 {
		c.Features = []string{DefaultCarFeature}
	}
	if c.Type == "" {
		c.Type = DefaultCarType
	}
	return nil
}
