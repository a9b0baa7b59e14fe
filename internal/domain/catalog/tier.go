// Package catalog holds the static service tier catalog. Tiers are loaded
// once at startup and never mutated at runtime.
package catalog

import "errors"

var ErrTierNotFound = errors.New("service tier not found")

type Tier struct {
	key         string
	displayName string
	unitPrice   int64
}

func NewTier(key, displayName string, unitPrice int64) Tier {
	return Tier{key: key, displayName: displayName, unitPrice: unitPrice}
}

func (t Tier) Key() string         { return t.key }
func (t Tier) DisplayName() string { return t.displayName }
func (t Tier) UnitPrice() int64    { return t.unitPrice }

type Catalog struct {
	order []string
	tiers map[string]Tier
}

func NewCatalog(tiers []Tier) *Catalog {
	c := &Catalog{tiers: make(map[string]Tier, len(tiers))}
	for _, t := range tiers {
		if _, ok := c.tiers[t.key]; ok {
			continue
		}
		c.order = append(c.order, t.key)
		c.tiers[t.key] = t
	}
	return c
}

func (c *Catalog) Find(key string) (Tier, error) {
	t, ok := c.tiers[key]
	if !ok {
		return Tier{}, ErrTierNotFound
	}
	return t, nil
}

// All returns tiers in declaration order, for menu rendering.
func (c *Catalog) All() []Tier {
	out := make([]Tier, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.tiers[key])
	}
	return out
}

// DefaultCatalog mirrors the production tier list.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Tier{
		NewTier("1000_500", "1000 pe 500", 8),
		NewTier("500_500", "500 pe 500", 16),
		NewTier("1000_1000", "1000 pe 1000", 67),
		NewTier("2000_2000", "2000 pe 2000", 124),
		NewTier("4000_4000", "4000 pe 4000", 288),
	})
}
