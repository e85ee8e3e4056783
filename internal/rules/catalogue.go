package rules

import (
	"fmt"
	"math"
)

// Action returns the rule for k. It panics if k is not enumerated: the
// catalogue is total, so a miss is a programming error.
func Action(k ActionKind) ActionRule {
	if !k.Valid() {
		panic(fmt.Sprintf("rules: no action rule for %v", k))
	}
	return actionTable[k]
}

// Defense returns the rule for k. It panics if k is not enumerated.
func Defense(k DefenseKind) DefenseRule {
	if !k.Valid() {
		panic(fmt.Sprintf("rules: no defense rule for %v", k))
	}
	return defenseTable[k]
}

// Distance returns the rule for b. It panics if b is not enumerated.
func Distance(b DistanceBand) DistanceRule {
	if !b.Valid() {
		panic(fmt.Sprintf("rules: no distance rule for %v", b))
	}
	return distanceTable[b]
}

// Check verifies that every enumerated kind and band has exactly one rule
// whose key matches its slot, and that every cross-reference names an
// enumerated kind.
func Check() error {
	return checkTables(actionTable, defenseTable, distanceTable)
}

func checkTables(
	actions [actionKindEnd]ActionRule,
	defenses [defenseKindEnd]DefenseRule,
	distances [distanceBandEnd]DistanceRule,
) error {
	for _, k := range AllActionKinds() {
		r := actions[k]
		if r.Kind != k {
			return fmt.Errorf("action %v: rule slot holds %v", k, r.Kind)
		}
		if r.BaseSuccessRate < 0 || r.BaseSuccessRate > 1 {
			return fmt.Errorf("action %v: base success rate %v outside [0,1]", k, r.BaseSuccessRate)
		}
		if r.ExecutionTime <= 0 {
			return fmt.Errorf("action %v: execution time must be positive", k)
		}
		if r.Category == 0 {
			return fmt.Errorf("action %v: missing category", k)
		}
		if err := enumerated("action", k, "valid distances", r.ValidDistances.Len(), len(r.ValidDistances.Slice())); err != nil {
			return err
		}
		if err := enumerated("action", k, "vulnerable to", r.VulnerableTo.Len(), len(r.VulnerableTo.Slice())); err != nil {
			return err
		}
		if err := enumerated("action", k, "effective against", r.EffectiveAgainst.Len(), len(r.EffectiveAgainst.Slice())); err != nil {
			return err
		}
	}
	for _, k := range AllDefenseKinds() {
		r := defenses[k]
		if r.Kind != k {
			return fmt.Errorf("defense %v: rule slot holds %v", k, r.Kind)
		}
		if r.BaseSuccessRate < 0 || r.BaseSuccessRate > 1 {
			return fmt.Errorf("defense %v: base success rate %v outside [0,1]", k, r.BaseSuccessRate)
		}
		if err := enumerated("defense", k, "effective against", r.EffectiveAgainst.Len(), len(r.EffectiveAgainst.Slice())); err != nil {
			return err
		}
		if err := enumerated("defense", k, "follow-up actions", r.FollowUpActions.Len(), len(r.FollowUpActions.Slice())); err != nil {
			return err
		}
	}
	for _, b := range AllDistanceBands() {
		r := distances[b]
		if r.Band != b {
			return fmt.Errorf("distance %v: rule slot holds %v", b, r.Band)
		}
		if err := enumerated("distance", b, "valid actions", r.ValidActions.Len(), len(r.ValidActions.Slice())); err != nil {
			return err
		}
		if err := enumerated("distance", b, "neighbors", r.Neighbors.Len(), len(r.Neighbors.Slice())); err != nil {
			return err
		}
		if r.Neighbors.Len() == 0 {
			return fmt.Errorf("distance %v: no neighbors", b)
		}
		if r.Neighbors.Has(b) {
			return fmt.Errorf("distance %v: lists itself as a neighbor", b)
		}
		for _, n := range r.Neighbors.Slice() {
			if !distances[n].Neighbors.Has(b) {
				return fmt.Errorf("distance %v: neighbor %v does not link back", b, n)
			}
		}
	}
	return nil
}

// enumerated fails when a set holds more members than it yields, which
// means a bit outside the enumerated kinds is set.
func enumerated(table string, key fmt.Stringer, field string, members, yielded int) error {
	if members != yielded {
		return fmt.Errorf("%s %v: %s names %d kinds that are not enumerated", table, key, field, members-yielded)
	}
	return nil
}

var (
	openLines      = Defenses(Quarte, Sixte)
	circularLines  = Defenses(CounterSixte, CounterQuarte)
	compoundParry  = Defenses(DoubleParry, CircleChange)
	counterOfSixte = Defenses(CounterSixte)
	lungeOrShort   = Bands(Lunge, Short)
	mediumOrLunge  = Bands(Medium, Lunge)
)

var actionTable = [actionKindEnd]ActionRule{
	Advance: {
		Kind: Advance, Category: CategoryPreparation,
		ExecutionTime: 0.5, BaseSuccessRate: 0.9,
		Description: "Step forward to close distance",
	},
	Retreat: {
		Kind: Retreat, Category: CategoryPreparation,
		ExecutionTime: 0.5, BaseSuccessRate: 0.9,
		Description: "Step back to open distance",
	},
	BalanceBreak: {
		Kind: BalanceBreak, Category: CategoryPreparation,
		ExecutionTime: 0.3, BaseSuccessRate: 0.6,
		Description: "Broken rhythm footwork to unsettle the opponent",
	},
	DirectThrust: {
		Kind: DirectThrust, Category: CategorySimpleAttack,
		ExecutionTime: 0.2, BaseSuccessRate: 0.7,
		ValidDistances: lungeOrShort,
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Straight attack to target",
	},
	Disengage: {
		Kind: Disengage, Category: CategorySimpleAttack,
		ExecutionTime: 0.3, BaseSuccessRate: 0.65,
		ValidDistances: lungeOrShort,
		VulnerableTo:   circularLines, EffectiveAgainst: openLines,
		Priority:    true,
		Description: "Attack around opponent's blade",
	},
	CutOver: {
		Kind: CutOver, Category: CategorySimpleAttack,
		ExecutionTime: 0.25, BaseSuccessRate: 0.65,
		ValidDistances: lungeOrShort,
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Attack over opponent's blade",
	},
	CounterDisengage: {
		Kind: CounterDisengage, Category: CategorySimpleAttack,
		ExecutionTime: 0.35, BaseSuccessRate: 0.6,
		ValidDistances: lungeOrShort,
		VulnerableTo:   circularLines, EffectiveAgainst: openLines,
		Priority:    true,
		Description: "Counter-attack around opponent's blade",
	},
	OneTwo: {
		Kind: OneTwo, Category: CategoryCompoundAttack,
		ExecutionTime: 0.4, BaseSuccessRate: 0.6,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   compoundParry, EffectiveAgainst: openLines,
		PreparationRequired: true, Priority: true,
		Description: "Feint direct, disengage attack",
	},
	DoubleDisengage: {
		Kind: DoubleDisengage, Category: CategoryCompoundAttack,
		ExecutionTime: 0.45, BaseSuccessRate: 0.55,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   compoundParry, EffectiveAgainst: openLines,
		PreparationRequired: true, Priority: true,
		Description: "Double feint disengage attack",
	},
	OneTwoThree: {
		Kind: OneTwoThree, Category: CategoryCompoundAttack,
		ExecutionTime: 0.5, BaseSuccessRate: 0.5,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   compoundParry, EffectiveAgainst: openLines,
		PreparationRequired: true, Priority: true,
		Description: "Triple feint disengage attack",
	},
	FeintDisengage: {
		Kind: FeintDisengage, Category: CategoryCompoundAttack,
		ExecutionTime: 0.4, BaseSuccessRate: 0.6,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   compoundParry, EffectiveAgainst: openLines,
		PreparationRequired: true, Priority: true,
		Description: "Feint attack followed by disengage",
	},
	BeatDirect: {
		Kind: BeatDirect, Category: CategoryCompoundAttack,
		ExecutionTime: 0.35, BaseSuccessRate: 0.65,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   compoundParry, EffectiveAgainst: openLines,
		PreparationRequired: true, Priority: true,
		Description: "Beat opponent's blade followed by direct attack",
	},
	StopThrust: {
		Kind: StopThrust, Category: CategoryCounterAttack,
		ExecutionTime: 0.3, BaseSuccessRate: 0.6,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Counter-attack to stop opponent's attack",
	},
	TimeThrust: {
		Kind: TimeThrust, Category: CategoryCounterAttack,
		ExecutionTime: 0.3, BaseSuccessRate: 0.6,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Counter-attack timed to opponent's action",
	},
	PointInLine: {
		Kind: PointInLine, Category: CategoryCounterAttack,
		ExecutionTime: 0.2, BaseSuccessRate: 0.7,
		ValidDistances: Bands(Long, Medium),
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Extended arm position to intercept opponent",
	},
	Beat: {
		Kind: Beat, Category: CategoryBladeAction,
		ExecutionTime: 0.2, BaseSuccessRate: 0.75,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Beat opponent's blade to create opening",
	},
	Pressure: {
		Kind: Pressure, Category: CategoryBladeAction,
		ExecutionTime: 0.25, BaseSuccessRate: 0.7,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Apply pressure to opponent's blade",
	},
	Bind: {
		Kind: Bind, Category: CategoryBladeAction,
		ExecutionTime: 0.3, BaseSuccessRate: 0.65,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Bind opponent's blade to control it",
	},
	Envelopment: {
		Kind: Envelopment, Category: CategoryBladeAction,
		ExecutionTime: 0.35, BaseSuccessRate: 0.6,
		ValidDistances: mediumOrLunge,
		VulnerableTo:   openLines, EffectiveAgainst: counterOfSixte,
		Priority:    true,
		Description: "Circular movement to control opponent's blade",
	},
}

var (
	thrustOrDisengage = Actions(DirectThrust, Disengage)
	thrustOrCutOver   = Actions(DirectThrust, CutOver)
	disengageOrCut    = Actions(Disengage, CutOver)
	compoundAttacks   = Actions(OneTwo, DoubleDisengage)
)

func simpleParry(k DefenseKind, against ActionSet, desc string) DefenseRule {
	return DefenseRule{
		Kind: k, ExecutionTime: 0.2, BaseSuccessRate: 0.65,
		EffectiveAgainst: against, FollowUpActions: thrustOrDisengage,
		Description: desc,
	}
}

func circularParry(k DefenseKind, desc string) DefenseRule {
	return DefenseRule{
		Kind: k, ExecutionTime: 0.3, BaseSuccessRate: 0.6,
		EffectiveAgainst: disengageOrCut, FollowUpActions: thrustOrDisengage,
		Description: desc,
	}
}

var defenseTable = [defenseKindEnd]DefenseRule{
	Prime:   simpleParry(Prime, thrustOrDisengage, "Low inside line parry"),
	Seconde: simpleParry(Seconde, thrustOrCutOver, "Low outside line parry"),
	Tierce:  simpleParry(Tierce, thrustOrCutOver, "High outside line parry"),
	Quarte:  simpleParry(Quarte, thrustOrDisengage, "Inside high line parry"),
	Quinte:  simpleParry(Quinte, thrustOrCutOver, "Head parry"),
	Sixte:   simpleParry(Sixte, thrustOrCutOver, "Outside high line parry"),
	Septime: simpleParry(Septime, thrustOrDisengage, "Low inside line parry"),
	Octave:  simpleParry(Octave, thrustOrCutOver, "Low outside line parry"),

	CounterSixte:   circularParry(CounterSixte, "Circular parry in high outside line"),
	CounterQuarte:  circularParry(CounterQuarte, "Circular parry in high inside line"),
	CounterSeptime: circularParry(CounterSeptime, "Circular parry in low inside line"),
	CounterOctave:  circularParry(CounterOctave, "Circular parry in low outside line"),

	SemiCircular2To6: circularParry(SemiCircular2To6, "Semi-circular parry from low outside to high outside line"),
	SemiCircular4To8: circularParry(SemiCircular4To8, "Semi-circular parry from high inside to low outside line"),
	SemiCircular6To7: circularParry(SemiCircular6To7, "Semi-circular parry from high outside to low inside line"),

	DoubleParry: {
		Kind: DoubleParry, ExecutionTime: 0.4, BaseSuccessRate: 0.55,
		EffectiveAgainst: compoundAttacks, FollowUpActions: thrustOrDisengage,
		Description: "Two consecutive parries to counter compound attacks",
	},
	CircleChange: {
		Kind: CircleChange, ExecutionTime: 0.4, BaseSuccessRate: 0.55,
		EffectiveAgainst: compoundAttacks, FollowUpActions: thrustOrDisengage,
		Description: "Circular parry to counter compound attacks",
	},
	BeatParry: {
		Kind: BeatParry, ExecutionTime: 0.3, BaseSuccessRate: 0.6,
		EffectiveAgainst: Actions(Beat, Pressure), FollowUpActions: thrustOrDisengage,
		Description: "Parry with a beat to counter blade actions",
	},
}

var distanceTable = [distanceBandEnd]DistanceRule{
	OutOfDistance: {
		Band:               OutOfDistance,
		Range:              Range{Min: 3.0, Max: math.Inf(1)},
		ValidActions:       Actions(Advance, BalanceBreak),
		PreparationAllowed: true,
		Description:        "Beyond attack distance",
		Neighbors:          Bands(Long),
	},
	Long: {
		Band:               Long,
		Range:              Range{Min: 2.0, Max: 3.0},
		ValidActions:       Actions(Advance, Retreat, PointInLine),
		PreparationAllowed: true,
		Description:        "Long preparation distance",
		Neighbors:          Bands(OutOfDistance, Medium),
	},
	Medium: {
		Band:               Medium,
		Range:              Range{Min: 1.5, Max: 2.0},
		ValidActions:       Actions(Advance, Retreat, OneTwo, DoubleDisengage),
		PreparationAllowed: true,
		Description:        "Standard engagement distance",
		Neighbors:          Bands(Long, Lunge),
	},
	Lunge: {
		Band:               Lunge,
		Range:              Range{Min: 1.0, Max: 1.5},
		ValidActions:       Actions(DirectThrust, Disengage, CutOver, CounterDisengage),
		PreparationAllowed: false,
		Description:        "Lunge attack distance",
		Neighbors:          Bands(Medium, Short),
	},
	Short: {
		Band:               Short,
		Range:              Range{Min: 0.5, Max: 1.0},
		ValidActions:       Actions(DirectThrust, Disengage, CutOver, CounterDisengage),
		PreparationAllowed: false,
		Description:        "Short attack distance",
		Neighbors:          Bands(Lunge, Infighting),
	},
	Infighting: {
		Band:               Infighting,
		Range:              Range{Min: 0.0, Max: 0.5},
		ValidActions:       Actions(Beat, Pressure),
		PreparationAllowed: false,
		Description:        "Infighting distance",
		Neighbors:          Bands(Short),
	},
}
