package model

import "github.com/google/uuid"

// CableSpec represents a reusable cable type.
type CableSpec struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Diameter      float64 `json:"diameter"`        // mm
	MinBendRadius float64 `json:"min_bend_radius"` // mm
	Color         string  `json:"color"`
}

// NewCableSpec creates a new CableSpec with a generated ID.
func NewCableSpec(name string, diameter, minBendRadius float64, color string) CableSpec {
	return CableSpec{
		ID:            uuid.New().String()[:8],
		Name:          name,
		Diameter:      diameter,
		MinBendRadius: minBendRadius,
		Color:         color,
	}
}

// ApplyToCable copies the spec's physical size onto a cable.
func (cs CableSpec) ApplyToCable(c *Cable) {
	c.Diameter = cs.Diameter
}

// Catalog holds the user's saved cable types.
type Catalog struct {
	Cables []CableSpec `json:"cables"`
}

// DefaultCatalog returns a catalog populated with common harness cables.
func DefaultCatalog() Catalog {
	return Catalog{
		Cables: []CableSpec{
			NewCableSpec("Signal 4mm", 4.0, 20.0, "grey"),
			NewCableSpec("Power 8mm", 8.0, 48.0, "black"),
			NewCableSpec("Power 12mm", 12.0, 72.0, "black"),
			NewCableSpec("Ethernet Cat6", 6.2, 25.0, "blue"),
			NewCableSpec("Coax RG58", 5.0, 25.0, "black"),
		},
	}
}

// FindByID returns a pointer to the cable spec with the given ID, or nil.
func (c *Catalog) FindByID(id string) *CableSpec {
	for i := range c.Cables {
		if c.Cables[i].ID == id {
			return &c.Cables[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first cable spec with the given name, or nil.
func (c *Catalog) FindByName(name string) *CableSpec {
	for i := range c.Cables {
		if c.Cables[i].Name == name {
			return &c.Cables[i]
		}
	}
	return nil
}

// Names returns the cable spec names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Cables))
	for i, s := range c.Cables {
		names[i] = s.Name
	}
	return names
}
