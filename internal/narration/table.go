// Package narration renders battle events into human readable lines from a
// table of templates.
package narration

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/psbattle/engine/internal/util"
)

//go:embed texts.yaml
var defaultTexts []byte

const defaultObject = "default"

// Table maps an effect id to its templates.
type Table map[string]map[string]string

// LoadTable decodes a YAML template table. The "default" object is required.
func LoadTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("error decoding narration table: %w", err)
	}
	if _, ok := t[defaultObject]; !ok {
		return nil, fmt.Errorf("narration table has no %q object", defaultObject)
	}
	return t, nil
}

// DefaultTable returns the embedded table.
func DefaultTable() Table {
	t, err := LoadTable(defaultTexts)
	if err != nil {
		panic(err)
	}
	return t
}

// resolve finds the template for key under objectKey. With useDefault the
// "default" object is searched when objectKey is unknown or lacks key.
// "#other" templates are followed to the same key of object "other".
func (t Table) resolve(objectKey, key string, useDefault bool) string {
	if key == "" {
		return ""
	}
	if objectKey == "" {
		if !useDefault {
			return ""
		}
		objectKey = defaultObject
	}
	objectKey = util.ToID(effectName(objectKey))
	obj, ok := t[objectKey]
	if !ok {
		if !useDefault {
			return ""
		}
		objectKey = defaultObject
		obj = t[objectKey]
	}
	template := obj[key]
	if template == "" {
		if !useDefault || objectKey == defaultObject {
			return ""
		}
		template = t[defaultObject][key]
		if template == "" {
			return ""
		}
	}
	if alias, ok := strings.CutPrefix(template, "#"); ok {
		return t.resolve(alias, key, true)
	}
	return template
}

// effectName strips an "item:", "move:" or "ability:" prefix.
func effectName(effect string) string {
	for _, prefix := range []string{"item:", "move:", "ability:"} {
		if rest, ok := strings.CutPrefix(effect, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(effect)
}

// fill replaces the first occurrence of each placeholder, in pair order.
// Pairs with an empty value are skipped.
func fill(template string, pairs ...string) string {
	if template == "" {
		return ""
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == "" || pairs[i+1] == "" {
			continue
		}
		template = strings.Replace(template, pairs[i], pairs[i+1], 1)
	}
	return strings.TrimSpace(template)
}

// line finalizes one line of narration. Bold markers are dropped.
func line(content string) string {
	content = strings.TrimSpace(content)
	if content == "" || content == "null" {
		return ""
	}
	return strings.ReplaceAll(util.FirstUpper(content), "**", "")
}

func lines(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
