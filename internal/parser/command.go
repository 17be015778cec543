package parser

// Command enumerates every protocol command the engine understands.
// Minor actions are the commands sent with a leading "-".
type Command int

const (
	CmdUnknown Command = iota

	// room level
	CmdInit
	CmdDeinit
	CmdNoInit
	CmdTitle
	CmdUsers
	CmdJoin
	CmdLeave
	CmdName
	CmdChat
	CmdChatTimestamped
	CmdTimestamp
	CmdBattleStarted
	CmdError
	CmdRaw
	CmdHTML
	CmdUHTML
	CmdUHTMLChange
	CmdBreak

	// battle progress
	CmdPlayer
	CmdTeamSize
	CmdGameType
	CmdGen
	CmdTier
	CmdRated
	CmdRule
	CmdClearPoke
	CmdPoke
	CmdTeamPreview
	CmdStart
	CmdTurn
	CmdMove
	CmdSwitch
	CmdDrag
	CmdDetailsChange
	CmdReplace
	CmdFaint
	CmdCant
	CmdSwap
	CmdRequest
	CmdInactive
	CmdInactiveOff
	CmdWin
	CmdTie
	CmdUpkeep

	// minor actions
	CmdMessage
	CmdFail
	CmdMiss
	CmdDamage
	CmdHeal
	CmdSetHP
	CmdStatus
	CmdCureStatus
	CmdCureTeam
	CmdBoost
	CmdUnboost
	CmdSetBoost
	CmdClearBoost
	CmdClearPositiveBoost
	CmdClearNegativeBoost
	CmdClearAllBoost
	CmdInvertBoost
	CmdWeather
	CmdFieldStart
	CmdFieldActivate
	CmdFieldEnd
	CmdSideStart
	CmdSideEnd
	CmdVolatileStart
	CmdVolatileEnd
	CmdActivate
	CmdCrit
	CmdResisted
	CmdSuperEffective
	CmdImmune
	CmdItem
	CmdEndItem
	CmdAbility
	CmdEndAbility
	CmdMega
	CmdPrimal
	CmdFormeChange
	CmdTransform
	CmdHint
	CmdCenter
	CmdBlock
	CmdOHKO
	CmdCombine
	CmdNoTarget
	CmdPrepare
	CmdZPower
	CmdZBroken
	CmdHitCount
	CmdSingleTurn
	CmdSingleMove

	commandCount
)

// canonical wire names, indexed by Command
var commandWireNames = [commandCount]string{
	CmdUnknown:            "",
	CmdInit:               "init",
	CmdDeinit:             "deinit",
	CmdNoInit:             "noinit",
	CmdTitle:              "title",
	CmdUsers:              "users",
	CmdJoin:               "j",
	CmdLeave:              "l",
	CmdName:               "n",
	CmdChat:               "c",
	CmdChatTimestamped:    "c:",
	CmdTimestamp:          ":",
	CmdBattleStarted:      "b",
	CmdError:              "error",
	CmdRaw:                "raw",
	CmdHTML:               "html",
	CmdUHTML:              "uhtml",
	CmdUHTMLChange:        "uhtmlchange",
	CmdBreak:              "break",
	CmdPlayer:             "player",
	CmdTeamSize:           "teamsize",
	CmdGameType:           "gametype",
	CmdGen:                "gen",
	CmdTier:               "tier",
	CmdRated:              "rated",
	CmdRule:               "rule",
	CmdClearPoke:          "clearpoke",
	CmdPoke:               "poke",
	CmdTeamPreview:        "teampreview",
	CmdStart:              "start",
	CmdTurn:               "turn",
	CmdMove:               "move",
	CmdSwitch:             "switch",
	CmdDrag:               "drag",
	CmdDetailsChange:      "detailschange",
	CmdReplace:            "replace",
	CmdFaint:              "faint",
	CmdCant:               "cant",
	CmdSwap:               "swap",
	CmdRequest:            "request",
	CmdInactive:           "inactive",
	CmdInactiveOff:        "inactiveoff",
	CmdWin:                "win",
	CmdTie:                "tie",
	CmdUpkeep:             "upkeep",
	CmdMessage:            "-message",
	CmdFail:               "-fail",
	CmdMiss:               "-miss",
	CmdDamage:             "-damage",
	CmdHeal:               "-heal",
	CmdSetHP:              "-sethp",
	CmdStatus:             "-status",
	CmdCureStatus:         "-curestatus",
	CmdCureTeam:           "-cureteam",
	CmdBoost:              "-boost",
	CmdUnboost:            "-unboost",
	CmdSetBoost:           "-setboost",
	CmdClearBoost:         "-clearboost",
	CmdClearPositiveBoost: "-clearpositiveboost",
	CmdClearNegativeBoost: "-clearnegativeboost",
	CmdClearAllBoost:      "-clearallboost",
	CmdInvertBoost:        "-invertboost",
	CmdWeather:            "-weather",
	CmdFieldStart:         "-fieldstart",
	CmdFieldActivate:      "-fieldactivate",
	CmdFieldEnd:           "-fieldend",
	CmdSideStart:          "-sidestart",
	CmdSideEnd:            "-sideend",
	CmdVolatileStart:      "-start",
	CmdVolatileEnd:        "-end",
	CmdActivate:           "-activate",
	CmdCrit:               "-crit",
	CmdResisted:           "-resisted",
	CmdSuperEffective:     "-supereffective",
	CmdImmune:             "-immune",
	CmdItem:               "-item",
	CmdEndItem:            "-enditem",
	CmdAbility:            "-ability",
	CmdEndAbility:         "-endability",
	CmdMega:               "-mega",
	CmdPrimal:             "-primal",
	CmdFormeChange:        "-formechange",
	CmdTransform:          "-transform",
	CmdHint:               "-hint",
	CmdCenter:             "-center",
	CmdBlock:              "-block",
	CmdOHKO:               "-ohko",
	CmdCombine:            "-combine",
	CmdNoTarget:           "-notarget",
	CmdPrepare:            "-prepare",
	CmdZPower:             "-zpower",
	CmdZBroken:            "-zbroken",
	CmdHitCount:           "-hitcount",
	CmdSingleTurn:         "-singleturn",
	CmdSingleMove:         "-singlemove",
}

var commandAliases = map[string]Command{
	"join":   CmdJoin,
	"leave":  CmdLeave,
	"name":   CmdName,
	"chat":   CmdChat,
	"battle": CmdBattleStarted,
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(commandWireNames)+len(commandAliases))
	for c, name := range commandWireNames {
		if name != "" {
			m[name] = Command(c)
		}
	}
	for name, c := range commandAliases {
		m[name] = c
	}
	return m
}()

// ParseCommand maps a lower-cased wire name to its Command, CmdUnknown otherwise.
func ParseCommand(name string) Command {
	if c, ok := commandsByName[name]; ok {
		return c
	}
	return CmdUnknown
}

// Commands lists every known command, CmdUnknown excluded.
func Commands() []Command {
	out := make([]Command, 0, commandCount-1)
	for c := CmdUnknown + 1; c < commandCount; c++ {
		out = append(out, c)
	}
	return out
}

// String returns the canonical wire name.
func (c Command) String() string {
	if c <= CmdUnknown || c >= commandCount {
		return "unknown"
	}
	return commandWireNames[c]
}

// Minor reports whether the command is a minor action.
func (c Command) Minor() bool {
	return c >= CmdMessage && c < commandCount
}

// RoomLevel reports whether the command concerns the room rather than the battle.
func (c Command) RoomLevel() bool {
	return c > CmdUnknown && c <= CmdBreak
}
