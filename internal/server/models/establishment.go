package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Establishment struct {
	ID           string
	Name         string
	Region       string
	AreaHectares decimal.Decimal
	CreatedAt    time.Time
}
