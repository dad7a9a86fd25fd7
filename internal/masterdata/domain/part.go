package masterdata

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"maintenance-kpi/internal/failure"
)

var (
	// ErrNegativeStock is returned when a part carries a negative stock figure.
	ErrNegativeStock = fmt.Errorf("masterdata: negative stock: %w", failure.ErrInvalidArgument)
	// ErrEquipmentNotFound is returned when an equipment filter names unknown equipment.
	ErrEquipmentNotFound = fmt.Errorf("masterdata: equipment not found: %w", failure.ErrNotFound)
)

// Equipment is a maintained asset.
type Equipment struct {
	ID   string
	Name string
}

// Part is a stocked spare part snapshot.
type Part struct {
	ID           string
	Name         string
	CurrentStock int
	MinimumStock int
}

// Validate checks part invariants used by KPI computations.
func (p Part) Validate() error {
	if p.CurrentStock < 0 || p.MinimumStock < 0 {
		return fmt.Errorf("%w: part %s", ErrNegativeStock, p.ID)
	}
	return nil
}

// IsCompliant reports whether stock is at or above the minimum.
func (p Part) IsCompliant() bool { return p.CurrentStock >= p.MinimumStock }

// SupplierPart is a supplier's offer for a part.
type SupplierPart struct {
	SupplierID   string
	SupplierName string
	PartID       string
	PartName     string
	Price        decimal.Decimal
	IsPreferred  bool
}

// PartReader lists parts.
type PartReader interface {
	ListParts(ctx context.Context) ([]Part, error)
}

// SupplierPartReader lists supplier offers.
type SupplierPartReader interface {
	ListSupplierParts(ctx context.Context) ([]SupplierPart, error)
}

// EquipmentReader looks up equipment.
type EquipmentReader interface {
	// GetEquipment returns ErrEquipmentNotFound for unknown ids.
	GetEquipment(ctx context.Context, id string) (*Equipment, error)
}
