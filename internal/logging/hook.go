package logging

import (
	"sort"

	"github.com/rs/zerolog"
)

// ContextProvider returns dynamic fields added to every log event, such as
// the current room and turn.
type ContextProvider func() map[string]any

// ContextHook injects the provider's fields into each event.
func ContextHook(provider ContextProvider) zerolog.Hook {
	return zerolog.HookFunc(func(e *zerolog.Event, level zerolog.Level, msg string) {
		if provider == nil {
			return
		}
		fields := provider()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e.Interface(k, fields[k])
		}
	})
}
