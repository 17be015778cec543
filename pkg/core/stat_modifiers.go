// pkg/core/stat_modifiers.go
package core

// Stat keys as they appear on the wire.
const (
	StatAtk      = "atk"
	StatDef      = "def"
	StatSpa      = "spa"
	StatSpd      = "spd"
	StatSpe      = "spe"
	StatEvasion  = "evasion"
	StatAccuracy = "accuracy"
)

// StatKeys lists the seven boostable stats in display order.
var StatKeys = [...]string{StatAtk, StatDef, StatSpa, StatSpd, StatSpe, StatEvasion, StatAccuracy}

const (
	minStage = -6
	maxStage = 6
)

var (
	mainLevels = [13]float64{1.0 / 4, 2.0 / 7, 1.0 / 3, 2.0 / 5, 1.0 / 2, 2.0 / 3, 1, 3.0 / 2, 2, 5.0 / 2, 3, 7.0 / 2, 4}
	altLevels  = [13]float64{3.0 / 9, 3.0 / 8, 3.0 / 7, 3.0 / 6, 3.0 / 5, 3.0 / 4, 1, 4.0 / 3, 5.0 / 3, 2, 7.0 / 3, 8.0 / 3, 3}
)

// StatModifiers holds the seven stat stages, each kept within [-6, 6].
type StatModifiers struct {
	stages [len(StatKeys)]int
}

func statIndex(stat string) int {
	for i, k := range StatKeys {
		if k == stat {
			return i
		}
	}
	return -1
}

func clampStage(v int) int {
	return max(minStage, min(v, maxStage))
}

// Get returns the stage of stat, 0 for unknown keys.
func (m *StatModifiers) Get(stat string) int {
	if i := statIndex(stat); i >= 0 {
		return m.stages[i]
	}
	return 0
}

// Inc adds delta to stat, clamping at the bounds.
func (m *StatModifiers) Inc(stat string, delta int) {
	if i := statIndex(stat); i >= 0 {
		m.stages[i] = clampStage(m.stages[i] + delta)
	}
}

// Set assigns an absolute stage to stat.
func (m *StatModifiers) Set(stat string, value int) {
	if i := statIndex(stat); i >= 0 {
		m.stages[i] = clampStage(value)
	}
}

// SetAll copies every stage from other.
func (m *StatModifiers) SetAll(other StatModifiers) {
	m.stages = other.stages
}

// Invert flips the sign of every stage.
func (m *StatModifiers) Invert() {
	for i := range m.stages {
		m.stages[i] = -m.stages[i]
	}
}

// Clear resets every stage to 0.
func (m *StatModifiers) Clear() {
	m.stages = [len(StatKeys)]int{}
}

// ClearPositive resets only the raised stages.
func (m *StatModifiers) ClearPositive() {
	for i, v := range m.stages {
		if v > 0 {
			m.stages[i] = 0
		}
	}
}

// ClearNegative resets only the lowered stages.
func (m *StatModifiers) ClearNegative() {
	for i, v := range m.stages {
		if v < 0 {
			m.stages[i] = 0
		}
	}
}

// Modifier returns the multiplier for the current stage of stat.
// Evasion and accuracy use their own table; unknown keys yield 0.
func (m *StatModifiers) Modifier(stat string) float64 {
	i := statIndex(stat)
	if i < 0 {
		return 0
	}
	return StageMultiplier(stat, m.stages[i])
}

// StageMultiplier maps a stage of stat to its multiplier.
func StageMultiplier(stat string, stage int) float64 {
	stage = clampStage(stage)
	if stat == StatEvasion || stat == StatAccuracy {
		return altLevels[stage+maxStage]
	}
	return mainLevels[stage+maxStage]
}

// Stages returns a copy of the stages keyed by stat.
func (m *StatModifiers) Stages() map[string]int {
	out := make(map[string]int, len(StatKeys))
	for i, k := range StatKeys {
		out[k] = m.stages[i]
	}
	return out
}

// IsZero reports whether no stat is boosted or lowered.
func (m *StatModifiers) IsZero() bool {
	return m.stages == [len(StatKeys)]int{}
}
