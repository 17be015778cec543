// pkg/core/field.go
package core

import (
	"fmt"
	"slices"
	"strings"
)

// WeatherNone is the wire value that clears the weather.
const WeatherNone = "none"

// FieldState is the active weather plus field effects in arrival order.
type FieldState struct {
	Weather string // empty when no weather is active
	Effects []string
}

// SetWeather sets or clears ("none") the weather.
func (f *FieldState) SetWeather(w string) {
	if w == WeatherNone {
		w = ""
	}
	f.Weather = w
}

// StartEffect appends an effect id.
func (f *FieldState) StartEffect(id string) {
	f.Effects = append(f.Effects, id)
}

// EndEffect removes the first occurrence of an effect id.
func (f *FieldState) EndEffect(id string) {
	if i := slices.Index(f.Effects, id); i >= 0 {
		f.Effects = slices.Delete(f.Effects, i, i+1)
	}
}

// Displayed is the weather if any, else the first field effect, else "".
func (f *FieldState) Displayed() string {
	if f.Weather != "" {
		return f.Weather
	}
	if len(f.Effects) > 0 {
		return f.Effects[0]
	}
	return ""
}

// Reset clears weather and effects.
func (f *FieldState) Reset() {
	f.Weather = ""
	f.Effects = nil
}

// SideConditions counts hazard and screen occurrences on one side by compact key.
type SideConditions struct {
	keys   []string
	counts map[string]int
}

// SideKey derives the two letter key of an effect name: the initials of the
// first two words ("Stealth Rock" -> "SR"), or its first two letters ("Spikes" -> "SP").
func SideKey(effect string) string {
	effect = strings.TrimSpace(effect)
	if effect == "" {
		return ""
	}
	r := []rune(effect)
	if i := strings.IndexByte(effect, ' '); i >= 0 && i+1 < len(effect) {
		rest := []rune(effect[i+1:])
		return strings.ToUpper(string(r[0]) + string(rest[0]))
	}
	if len(r) < 2 {
		return strings.ToUpper(string(r))
	}
	return strings.ToUpper(string(r[:2]))
}

// Start increments the count of effect and returns the new count.
func (s *SideConditions) Start(effect string) int {
	key := SideKey(effect)
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	if _, ok := s.counts[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.counts[key]++
	return s.counts[key]
}

// End removes effect regardless of its count.
func (s *SideConditions) End(effect string) {
	key := SideKey(effect)
	if _, ok := s.counts[key]; !ok {
		return
	}
	delete(s.counts, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })
}

// Count returns the occurrence count of effect.
func (s *SideConditions) Count(effect string) int {
	return s.counts[SideKey(effect)]
}

// Labels renders each active condition, stacked ones with a count ("SR", "SP x3").
func (s *SideConditions) Labels() []string {
	out := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		if n := s.counts[k]; n > 1 {
			out = append(out, fmt.Sprintf("%s x%d", k, n))
		} else {
			out = append(out, k)
		}
	}
	return out
}

// Reset removes every condition.
func (s *SideConditions) Reset() {
	s.keys = nil
	s.counts = nil
}
