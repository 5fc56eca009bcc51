// Package types contains common types used across the selection.
package types

// Tier is an identification quality level. The ordering matters: Tight
// criteria are designed to be strict subsets of Medium's, and Medium's of
// Loose's, although each tier is always evaluated independently.
type Tier int

const (
	TierNone Tier = iota
	TierLoose
	TierMedium
	TierTight
)

// String returns the lower-case tier name.
func (t Tier) String() string {
	switch t {
	case TierLoose:
		return "loose"
	case TierMedium:
		return "medium"
	case TierTight:
		return "tight"
	default:
		return "none"
	}
}

// IDBits packs independent tier decisions into the record bitmask:
// tight | medium<<1 | loose<<2.
func IDBits(loose, medium, tight bool) int {
	id := 0
	if tight {
		id |= 1
	}
	if medium {
		id |= 1 << 1
	}
	if loose {
		id |= 1 << 2
	}
	return id
}

// JetIDBits packs jet quality flags: tight | loose<<1.
func JetIDBits(loose, tight bool) int {
	id := 0
	if tight {
		id |= 1
	}
	if loose {
		id |= 1 << 1
	}
	return id
}
