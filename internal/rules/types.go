package rules

import (
	"math"
	"math/bits"
)

// Category groups actions the way fencing manuals do.
type Category uint8

const (
	CategoryPreparation Category = iota + 1
	CategorySimpleAttack
	CategoryCompoundAttack
	CategoryCounterAttack
	CategoryBladeAction
)

func (c Category) String() string {
	switch c {
	case CategoryPreparation:
		return "preparation"
	case CategorySimpleAttack:
		return "simple_attack"
	case CategoryCompoundAttack:
		return "compound_attack"
	case CategoryCounterAttack:
		return "counter_attack"
	case CategoryBladeAction:
		return "blade_action"
	}
	return "unknown"
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// BandSet is an immutable set of distance bands.
type BandSet uint8

// Bands builds a BandSet.
func Bands(bs ...DistanceBand) BandSet {
	var s BandSet
	for _, b := range bs {
		s |= 1 << b
	}
	return s
}

func (s BandSet) Has(b DistanceBand) bool { return b.Valid() && s&(1<<b) != 0 }
func (s BandSet) Len() int                { return bits.OnesCount8(uint8(s)) }

// Slice returns members from farthest to closest.
func (s BandSet) Slice() []DistanceBand {
	out := make([]DistanceBand, 0, s.Len())
	for b := DistanceBand(1); b < distanceBandEnd; b++ {
		if s.Has(b) {
			out = append(out, b)
		}
	}
	return out
}

// ActionSet is an immutable set of action kinds.
type ActionSet uint32

// Actions builds an ActionSet.
func Actions(ks ...ActionKind) ActionSet {
	var s ActionSet
	for _, k := range ks {
		s |= 1 << k
	}
	return s
}

func (s ActionSet) Has(k ActionKind) bool { return k.Valid() && s&(1<<k) != 0 }
func (s ActionSet) Len() int              { return bits.OnesCount32(uint32(s)) }

// Slice returns members in declaration order.
func (s ActionSet) Slice() []ActionKind {
	out := make([]ActionKind, 0, s.Len())
	for k := ActionKind(1); k < actionKindEnd; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// DefenseSet is an immutable set of defense kinds.
type DefenseSet uint32

// Defenses builds a DefenseSet.
func Defenses(ks ...DefenseKind) DefenseSet {
	var s DefenseSet
	for _, k := range ks {
		s |= 1 << k
	}
	return s
}

func (s DefenseSet) Has(k DefenseKind) bool { return k.Valid() && s&(1<<k) != 0 }
func (s DefenseSet) Len() int               { return bits.OnesCount32(uint32(s)) }

func (s DefenseSet) Slice() []DefenseKind {
	out := make([]DefenseKind, 0, s.Len())
	for k := DefenseKind(1); k < defenseKindEnd; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// ActionRule holds the fixed properties of an ActionKind.
type ActionRule struct {
	Kind                ActionKind
	Category            Category
	ExecutionTime       float64 // seconds
	BaseSuccessRate     float64 // [0,1]
	ValidDistances      BandSet
	VulnerableTo        DefenseSet
	EffectiveAgainst    DefenseSet
	PreparationRequired bool
	Priority            bool
	Description         string
}

// DefenseRule holds the fixed properties of a DefenseKind.
type DefenseRule struct {
	Kind             DefenseKind
	ExecutionTime    float64
	BaseSuccessRate  float64
	EffectiveAgainst ActionSet
	FollowUpActions  ActionSet
	Description      string
}

// Range is a distance interval in meters. Max may be +Inf.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether m falls within [Min, Max).
func (r Range) Contains(m float64) bool { return m >= r.Min && m < r.Max }

// Unbounded reports whether the range has no upper limit.
func (r Range) Unbounded() bool { return math.IsInf(r.Max, 1) }

// DistanceRule holds the fixed properties of a DistanceBand.
type DistanceRule struct {
	Band               DistanceBand
	Range              Range
	ValidActions       ActionSet
	PreparationAllowed bool
	Description        string
	Neighbors          BandSet
}
