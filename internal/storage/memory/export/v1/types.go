// Package v1 contains the v1 JSON export format for recorded battles.
package v1

// Version is written into every export.
const Version = 1

// Export is the root JSON structure for v1 format
type Export struct {
	Version   int        `json:"version"`
	RoomID    string     `json:"roomId"`
	Title     string     `json:"title"`
	Format    string     `json:"format"`
	Gen       int        `json:"gen"`
	GameType  string     `json:"gameType"`
	Players   [2]string  `json:"players"`
	Rated     bool       `json:"rated"`
	StartedAt string     `json:"startedAt"`
	EndedAt   string     `json:"endedAt,omitempty"`
	Winner    string     `json:"winner,omitempty"`
	Turns     []Turn     `json:"turns"`
	Log       []Line     `json:"log"`
	Events    [][]any    `json:"events"` // [turn, type, subject, detail]
	Decisions []Decision `json:"decisions"`
}

// Turn is a snapshot of the active slots at a turn boundary.
type Turn struct {
	Turn    int      `json:"turn"`
	Time    string   `json:"time"`
	Field   string   `json:"field,omitempty"`
	Weather string   `json:"weather,omitempty"`
	Actives []Active `json:"actives"`
}

// Active is one occupied slot.
type Active struct {
	Side      string         `json:"side"`
	Position  int            `json:"position"`
	Name      string         `json:"name"`
	Species   string         `json:"species"`
	HP        int            `json:"hp"`
	MaxHP     int            `json:"maxhp"`
	Status    string         `json:"status,omitempty"`
	Boosts    map[string]int `json:"boosts,omitempty"`
	Volatiles []string       `json:"volatiles,omitempty"`
}

// Line is a printed line.
type Line struct {
	Seq  int    `json:"seq"`
	Turn int    `json:"turn"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Decision is a choice sent by the local player.
type Decision struct {
	RQID    int    `json:"rqid"`
	Turn    int    `json:"turn"`
	Time    string `json:"time"`
	Command string `json:"command"`
	Choice  string `json:"choice"`
}
