// Package model holds the gorm models of the battle log tables.
package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Battle{},
	&Turn{},
	&LogLine{},
	&Event{},
	&Decision{},
}

// Battle is one recorded battle room
type Battle struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time    `json:"createdAt"`
	RoomID    string       `json:"roomId" gorm:"size:127;index:idx_battle_room_id"`
	Title     string       `json:"title" gorm:"size:255"`
	Format    string       `json:"format" gorm:"size:127"`
	Gen       int          `json:"gen"`
	GameType  string       `json:"gameType" gorm:"size:16"`
	P1        string       `json:"p1" gorm:"size:64"`
	P2        string       `json:"p2" gorm:"size:64"`
	Rated     bool         `json:"rated"`
	Winner    string       `json:"winner" gorm:"size:64"`
	StartedAt time.Time    `json:"startedAt"`
	EndedAt   sql.NullTime `json:"endedAt"`
}

func (*Battle) TableName() string {
	return "battles"
}

// Turn is a snapshot of the active slots at a turn boundary
type Turn struct {
	ID       uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	BattleID uuid.UUID      `json:"battleId" gorm:"type:uuid;index:idx_turn_battle_id"`
	Turn     int            `json:"turn" gorm:"index:idx_turn_turn"`
	Time     time.Time      `json:"time"`
	Field    string         `json:"field" gorm:"size:64"`
	Weather  string         `json:"weather" gorm:"size:64"`
	Actives  datatypes.JSON `json:"actives"` // []ActiveState
}

func (*Turn) TableName() string {
	return "turns"
}

// ActiveState is the JSON shape of one occupied slot inside Turn.Actives
type ActiveState struct {
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

// LogLine is one printed line of the battle log
type LogLine struct {
	ID       uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	BattleID uuid.UUID `json:"battleId" gorm:"type:uuid;index:idx_logline_battle_id"`
	Seq      int       `json:"seq"`
	Turn     int       `json:"turn"`
	Time     time.Time `json:"time"`
	Kind     string    `json:"kind" gorm:"size:8"`
	Text     string    `json:"text"`
}

func (*LogLine) TableName() string {
	return "log_lines"
}

// Event is a structured presenter event
type Event struct {
	ID       uint              `json:"id" gorm:"primarykey;autoIncrement;"`
	BattleID uuid.UUID         `json:"battleId" gorm:"type:uuid;index:idx_event_battle_id"`
	Turn     int               `json:"turn"`
	Time     time.Time         `json:"time"`
	Type     string            `json:"type" gorm:"size:32;index:idx_event_type"`
	Subject  string            `json:"subject" gorm:"size:127"`
	Detail   datatypes.JSONMap `json:"detail"`
}

func (*Event) TableName() string {
	return "battle_events"
}

// Decision is a choice sent by the local player
type Decision struct {
	ID       uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	BattleID uuid.UUID `json:"battleId" gorm:"type:uuid;index:idx_decision_battle_id"`
	RQID     int       `json:"rqid"`
	Turn     int       `json:"turn"`
	Time     time.Time `json:"time"`
	Command  string    `json:"command" gorm:"size:8"`
	Choice   string    `json:"choice" gorm:"size:255"`
}

func (*Decision) TableName() string {
	return "decisions"
}
