package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by the Parse functions when a name does not
// identify any enumerated kind, band or blade position.
var ErrUnknownKind = errors.New("unknown kind")

// ActionKind identifies an offensive or preparatory maneuver.
// The zero value is not a valid kind.
type ActionKind uint8

const (
	// Preparation footwork
	Advance ActionKind = iota + 1
	Retreat
	BalanceBreak

	// Simple attacks
	DirectThrust
	Disengage
	CutOver
	CounterDisengage

	// Compound attacks
	OneTwo
	DoubleDisengage
	OneTwoThree
	FeintDisengage
	BeatDirect

	// Counter attacks
	StopThrust
	TimeThrust
	PointInLine

	// Blade actions
	Beat
	Pressure
	Bind
	Envelopment

	actionKindEnd
)

var actionNames = [...]string{
	Advance:          "Advance",
	Retreat:          "Retreat",
	BalanceBreak:     "Balance Break",
	DirectThrust:     "Direct Thrust",
	Disengage:        "Disengage",
	CutOver:          "Cut Over",
	CounterDisengage: "Counter Disengage",
	OneTwo:           "One-Two",
	DoubleDisengage:  "Double Disengage",
	OneTwoThree:      "One-Two-Three",
	FeintDisengage:   "Feint Disengage",
	BeatDirect:       "Beat Direct",
	StopThrust:       "Stop Thrust",
	TimeThrust:       "Time Thrust",
	PointInLine:      "Point in Line",
	Beat:             "Beat",
	Pressure:         "Pressure",
	Bind:             "Bind",
	Envelopment:      "Envelopment",
}

// Valid reports whether k is one of the enumerated action kinds.
func (k ActionKind) Valid() bool { return k > 0 && k < actionKindEnd }

// String returns the display name, e.g. "Direct Thrust".
func (k ActionKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
	return actionNames[k]
}

// Slug returns the snake_case identifier, e.g. "direct_thrust".
func (k ActionKind) Slug() string { return slugify(k.String()) }

// MarshalText encodes the kind as its slug.
func (k ActionKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: action %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.Slug()), nil
}

// UnmarshalText accepts either the slug or the display name.
func (k *ActionKind) UnmarshalText(b []byte) error {
	v, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// AllActionKinds returns every action kind in declaration order.
func AllActionKinds() []ActionKind {
	out := make([]ActionKind, 0, actionKindEnd-1)
	for k := ActionKind(1); k < actionKindEnd; k++ {
		out = append(out, k)
	}
	return out
}

// ParseActionKind resolves a display name or slug to an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	want := slugify(s)
	for k := ActionKind(1); k < actionKindEnd; k++ {
		if k.Slug() == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: action %q", ErrUnknownKind, s)
}

// DefenseKind identifies a parry.
type DefenseKind uint8

const (
	// Simple parries
	Prime DefenseKind = iota + 1
	Seconde
	Tierce
	Quarte
	Quinte
	Sixte
	Septime
	Octave

	// Circular parries
	CounterSixte
	CounterQuarte
	CounterSeptime
	CounterOctave

	// Semi-circular parries
	SemiCircular2To6
	SemiCircular4To8
	SemiCircular6To7

	// Compound parries
	DoubleParry
	CircleChange
	BeatParry

	defenseKindEnd
)

var defenseNames = [...]string{
	Prime:            "Prime",
	Seconde:          "Seconde",
	Tierce:           "Tierce",
	Quarte:           "Quarte",
	Quinte:           "Quinte",
	Sixte:            "Sixte",
	Septime:          "Septime",
	Octave:           "Octave",
	CounterSixte:     "Counter of Sixte",
	CounterQuarte:    "Counter of Quarte",
	CounterSeptime:   "Counter of Septime",
	CounterOctave:    "Counter of Octave",
	SemiCircular2To6: "Semi-circular 2 to 6",
	SemiCircular4To8: "Semi-circular 4 to 8",
	SemiCircular6To7: "Semi-circular 6 to 7",
	DoubleParry:      "Double Parry",
	CircleChange:     "Circle Change",
	BeatParry:        "Beat Parry",
}

func (k DefenseKind) Valid() bool { return k > 0 && k < defenseKindEnd }

func (k DefenseKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("DefenseKind(%d)", uint8(k))
	}
	return defenseNames[k]
}

func (k DefenseKind) Slug() string { return slugify(k.String()) }

func (k DefenseKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: defense %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.Slug()), nil
}

func (k *DefenseKind) UnmarshalText(b []byte) error {
	v, err := ParseDefenseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// AllDefenseKinds returns every defense kind in declaration order.
func AllDefenseKinds() []DefenseKind {
	out := make([]DefenseKind, 0, defenseKindEnd-1)
	for k := DefenseKind(1); k < defenseKindEnd; k++ {
		out = append(out, k)
	}
	return out
}

// ParseDefenseKind resolves a display name or slug to a DefenseKind.
func ParseDefenseKind(s string) (DefenseKind, error) {
	want := slugify(s)
	for k := DefenseKind(1); k < defenseKindEnd; k++ {
		if k.Slug() == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: defense %q", ErrUnknownKind, s)
}

// DistanceBand is an engagement-distance zone, ordered farthest to closest.
type DistanceBand uint8

const (
	OutOfDistance DistanceBand = iota + 1
	Long
	Medium
	Lunge
	Short
	Infighting

	distanceBandEnd
)

var bandNames = [...]string{
	OutOfDistance: "Out of Distance",
	Long:          "Long Distance",
	Medium:        "Medium Distance",
	Lunge:         "Lunge Distance",
	Short:         "Short Distance",
	Infighting:    "Infighting",
}

var bandSlugs = [...]string{
	OutOfDistance: "out_of_distance",
	Long:          "long",
	Medium:        "medium",
	Lunge:         "lunge",
	Short:         "short",
	Infighting:    "infighting",
}

func (b DistanceBand) Valid() bool { return b > 0 && b < distanceBandEnd }

func (b DistanceBand) String() string {
	if !b.Valid() {
		return fmt.Sprintf("DistanceBand(%d)", uint8(b))
	}
	return bandNames[b]
}

// Slug returns the short identifier, e.g. "lunge".
func (b DistanceBand) Slug() string {
	if !b.Valid() {
		return b.String()
	}
	return bandSlugs[b]
}

func (b DistanceBand) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: distance %d", ErrUnknownKind, uint8(b))
	}
	return []byte(b.Slug()), nil
}

func (b *DistanceBand) UnmarshalText(text []byte) error {
	v, err := ParseDistanceBand(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// AllDistanceBands returns the bands from farthest to closest.
func AllDistanceBands() []DistanceBand {
	out := make([]DistanceBand, 0, distanceBandEnd-1)
	for b := DistanceBand(1); b < distanceBandEnd; b++ {
		out = append(out, b)
	}
	return out
}

// ParseDistanceBand accepts the slug ("lunge"), the display name
// ("Lunge Distance") or the upper-case tag ("LUNGE").
func ParseDistanceBand(s string) (DistanceBand, error) {
	want := slugify(s)
	for b := DistanceBand(1); b < distanceBandEnd; b++ {
		if bandSlugs[b] == want || slugify(bandNames[b]) == want {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: distance %q", ErrUnknownKind, s)
}

// BladePosition is one of the eight blade lines.
type BladePosition uint8

const (
	BladeSixte BladePosition = iota + 1
	BladeQuarte
	BladeSeptime
	BladeOctave
	BladePrime
	BladeSeconde
	BladeTierce
	BladeQuinte

	bladePositionEnd
)

var bladeNames = [...]string{
	BladeSixte:   "Sixte",
	BladeQuarte:  "Quarte",
	BladeSeptime: "Septime",
	BladeOctave:  "Octave",
	BladePrime:   "Prime",
	BladeSeconde: "Seconde",
	BladeTierce:  "Tierce",
	BladeQuinte:  "Quinte",
}

func (p BladePosition) Valid() bool { return p > 0 && p < bladePositionEnd }

func (p BladePosition) String() string {
	if !p.Valid() {
		return fmt.Sprintf("BladePosition(%d)", uint8(p))
	}
	return bladeNames[p]
}

func (p BladePosition) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: blade position %d", ErrUnknownKind, uint8(p))
	}
	return []byte(slugify(p.String())), nil
}

func (p *BladePosition) UnmarshalText(b []byte) error {
	v, err := ParseBladePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParseBladePosition resolves a blade position by name, case-insensitively.
func ParseBladePosition(s string) (BladePosition, error) {
	want := slugify(s)
	for p := BladePosition(1); p < bladePositionEnd; p++ {
		if slugify(bladeNames[p]) == want {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: blade position %q", ErrUnknownKind, s)
}

// slugify lower-cases s and folds spaces and hyphens to underscores.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-':
			return '_'
		}
		return r
	}, s)
}
