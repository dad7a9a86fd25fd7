package memory

import (
	"context"
	"sort"
	"sync"

	masterdata "maintenance-kpi/internal/masterdata/domain"
)

// Catalog is an in-memory store of equipment, parts and supplier offers for
// demo/testing.
type Catalog struct {
	mu        sync.RWMutex
	equipment map[string]masterdata.Equipment
	parts     map[string]masterdata.Part
	offers    []masterdata.SupplierPart
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		equipment: make(map[string]masterdata.Equipment),
		parts:     make(map[string]masterdata.Part),
	}
}

// PutEquipment inserts or replaces equipment.
func (c *Catalog) PutEquipment(items ...masterdata.Equipment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		c.equipment[item.ID] = item
	}
}

// PutParts inserts or replaces parts.
func (c *Catalog) PutParts(parts ...masterdata.Part) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, part := range parts {
		c.parts[part.ID] = part
	}
}

// AddOffers appends supplier offers.
func (c *Catalog) AddOffers(offers ...masterdata.SupplierPart) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offers = append(c.offers, offers...)
}

// GetEquipment loads equipment by id.
func (c *Catalog) GetEquipment(ctx context.Context, id string) (*masterdata.Equipment, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.equipment[id]
	if !ok {
		return nil, masterdata.ErrEquipmentNotFound
	}
	return &item, nil
}

// ListParts returns parts ordered by id.
func (c *Catalog) ListParts(ctx context.Context) ([]masterdata.Part, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]masterdata.Part, 0, len(c.parts))
	for _, part := range c.parts {
		result = append(result, part)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListSupplierParts returns supplier offers in insertion order.
func (c *Catalog) ListSupplierParts(ctx context.Context) ([]masterdata.SupplierPart, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]masterdata.SupplierPart(nil), c.offers...), nil
}
