// Difficulty policy — per-difficulty modifiers applied during decision
// synthesis. Pure functions; rolls are passed in so callers control the
// random source.
package bots

import "math"

// DifficultyModifiers are the static per-difficulty knobs.
type DifficultyModifiers struct {
	ResourceBonus    float64
	SuboptimalChance float64
	TargetWeakest    bool
}

var difficultyTable = map[Difficulty]DifficultyModifiers{
	DifficultyEasy:      {ResourceBonus: 1.0, SuboptimalChance: 0.5, TargetWeakest: false},
	DifficultyMedium:    {ResourceBonus: 1.0, SuboptimalChance: 0, TargetWeakest: false},
	DifficultyHard:      {ResourceBonus: 1.1, SuboptimalChance: 0, TargetWeakest: true},
	DifficultyNightmare: {ResourceBonus: 1.25, SuboptimalChance: 0, TargetWeakest: true},
}

// ModifiersFor returns the policy for a difficulty tag. Unknown tags get the
// medium policy.
func ModifiersFor(d Difficulty) DifficultyModifiers {
	if m, ok := difficultyTable[d]; ok {
		return m
	}
	return difficultyTable[DifficultyMedium]
}

// ApplyNightmareBonus multiplies amount by 1.25 and floors, only on the
// nightmare difficulty. Identity otherwise.
func ApplyNightmareBonus(amount int64, d Difficulty) int64 {
	if d != DifficultyNightmare {
		return amount
	}
	return int64(math.Floor(float64(amount) * 1.25))
}

// ShouldMakeSuboptimalChoice reports whether the bot should take a random
// valid decision instead of the rolled one. roll is uniform in [0, 1).
func ShouldMakeSuboptimalChoice(d Difficulty, roll float64) bool {
	return roll < ModifiersFor(d).SuboptimalChance
}

// SelectTarget picks a target for the difficulty. Returns nil on empty input.
// Difficulties that target the weakest pick the minimum-networth target
// deterministically (ties keep the earlier entry); others pick uniformly
// using roll.
func SelectTarget(targets []EmpireTarget, d Difficulty, roll float64) *EmpireTarget {
	if len(targets) == 0 {
		return nil
	}
	if ModifiersFor(d).TargetWeakest {
		weakest := 0
		for i := 1; i < len(targets); i++ {
			if targets[i].Networth < targets[weakest].Networth {
				weakest = i
			}
		}
		t := targets[weakest]
		return &t
	}
	idx := int(roll * float64(len(targets)))
	if idx >= len(targets) {
		idx = len(targets) - 1
	}
	t := targets[idx]
	return &t
}

// ApplySuboptimalQuantity scales value down by a factor in [0.25, 0.75)
// derived from roll when the suboptimal trigger fires, floored at minimum.
// Identity when the trigger does not fire. The roll is rescaled over the
// trigger window so the full factor range stays reachable at any
// suboptimal-chance setting.
func ApplySuboptimalQuantity(value, minimum int64, d Difficulty, roll float64) int64 {
	chance := ModifiersFor(d).SuboptimalChance
	if chance <= 0 || roll >= chance {
		return value
	}
	factor := 0.25 + (roll/chance)*0.5
	scaled := int64(math.Floor(float64(value) * factor))
	if scaled < minimum {
		return minimum
	}
	return scaled
}
