// Emotional state — a named state with an intensity that scales four
// decision modifiers. Neutral applies no modification and short-circuits at
// every caller.
package bots

// EmotionName tags an emotional state.
type EmotionName string

const (
	EmotionNeutral    EmotionName = "neutral"
	EmotionConfident  EmotionName = "confident"
	EmotionArrogant   EmotionName = "arrogant"
	EmotionDesperate  EmotionName = "desperate"
	EmotionVengeful   EmotionName = "vengeful"
	EmotionFearful    EmotionName = "fearful"
	EmotionTriumphant EmotionName = "triumphant"
)

// EmotionalState is a bot's current emotion and how strongly it is felt.
type EmotionalState struct {
	Name      EmotionName `json:"name"`
	Intensity float64     `json:"intensity"` // clamped to [0, 1]
}

// NeutralState returns the no-op emotional state.
func NeutralState() EmotionalState {
	return EmotionalState{Name: EmotionNeutral}
}

// IsNeutral reports whether the state applies no modification.
func (s EmotionalState) IsNeutral() bool {
	return s.Name == EmotionNeutral || s.Name == "" || s.Intensity <= 0
}

// EmotionModifiers are the four additive adjustments an emotion applies at
// intensity 1.0.
type EmotionModifiers struct {
	DecisionQuality     float64
	Aggression          float64
	AllianceWillingness float64
	Negotiation         float64
}

// emotionTable holds each non-neutral state's modifiers at intensity 1.0.
var emotionTable = map[EmotionName]EmotionModifiers{
	EmotionConfident:  {DecisionQuality: 0.10, Aggression: 0.20, AllianceWillingness: 0.00, Negotiation: 0.10},
	EmotionArrogant:   {DecisionQuality: -0.20, Aggression: 0.40, AllianceWillingness: -0.30, Negotiation: -0.20},
	EmotionDesperate:  {DecisionQuality: -0.30, Aggression: 0.30, AllianceWillingness: 0.40, Negotiation: 0.30},
	EmotionVengeful:   {DecisionQuality: -0.20, Aggression: 0.60, AllianceWillingness: -0.40, Negotiation: -0.30},
	EmotionFearful:    {DecisionQuality: -0.10, Aggression: -0.50, AllianceWillingness: 0.50, Negotiation: 0.20},
	EmotionTriumphant: {DecisionQuality: 0.20, Aggression: 0.30, AllianceWillingness: 0.10, Negotiation: 0.10},
}

// GetScaledModifiers returns the state's modifiers scaled linearly by
// intensity, clamping intensity into [0, 1]. Neutral or unknown states
// return the zero modifiers.
func GetScaledModifiers(name EmotionName, intensity float64) EmotionModifiers {
	base, ok := emotionTable[name]
	if !ok {
		return EmotionModifiers{}
	}
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	return EmotionModifiers{
		DecisionQuality:     base.DecisionQuality * intensity,
		Aggression:          base.Aggression * intensity,
		AllianceWillingness: base.AllianceWillingness * intensity,
		Negotiation:         base.Negotiation * intensity,
	}
}

// ApplyEmotionalModifiers returns a fresh weight vector with the emotion
// applied: attack × (1 + aggression), diplomacy × (1 + allianceWillingness),
// trade × (1 + negotiation), each floored at 0, then renormalized. All other
// keys are untouched before renormalization.
func ApplyEmotionalModifiers(w DecisionWeights, name EmotionName, intensity float64) DecisionWeights {
	out := w.Clone()
	mods := GetScaledModifiers(name, intensity)

	apply := func(dt DecisionType, factor float64) {
		v := out[dt] * factor
		if v < 0 {
			v = 0
		}
		out[dt] = v
	}
	apply(DecisionAttack, 1+mods.Aggression)
	apply(DecisionDiplomacy, 1+mods.AllianceWillingness)
	apply(DecisionTrade, 1+mods.Negotiation)

	out.Normalize()
	return out
}
