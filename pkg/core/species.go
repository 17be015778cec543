// pkg/core/species.go
package core

import (
	"slices"
	"strings"

	"github.com/psbattle/engine/internal/util"
)

// ids whose dash belongs to the species name and not to a forme
var formeExcluded = []string{"hooh", "hakamoo", "jangmoo", "kommoo", "porygonz"}

// Species is a species name decomposed into base species and forme.
type Species struct {
	Name     string
	Base     string
	Forme    string
	SpriteID string
}

// NewSpecies decomposes a species display name ("Charizard-Mega-X", "Kommo-o-Totem").
func NewSpecies(name string) Species {
	s := Species{Name: name}
	id := util.ToID(name)

	if !slices.Contains(formeExcluded, id) {
		if id == "kommoototem" {
			s.Base, s.Forme = "Kommo-o", "Totem"
		} else if base, forme, ok := strings.Cut(name, "-"); ok {
			s.Base, s.Forme = base, forme
		}
	}

	switch {
	case id != "yanmega" && strings.HasSuffix(id, "mega"):
		s.Base, s.Forme = strings.TrimSuffix(id, "mega"), "mega"
	case strings.HasSuffix(id, "primal"):
		s.Base, s.Forme = strings.TrimSuffix(id, "primal"), "primal"
	case strings.HasSuffix(id, "alola"):
		s.Base, s.Forme = strings.TrimSuffix(id, "alola"), "alola"
	}

	if s.Base == "" {
		s.Base = name
	}

	sprite := util.ToID(s.Base) + "-" + util.ToID(s.Forme)
	sprite = strings.TrimSuffix(sprite, "totem")
	s.SpriteID = strings.TrimSuffix(sprite, "-")
	return s
}
