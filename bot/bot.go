package bot

import (
	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/s2l/helpers"
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/client"
	"github.com/google/gxui/math"
)

const version = "AIur v0.3 (glhf)"

type Bot struct {
	*scl.Bot

	Logic func()

	// PlayOut disables leaving hopeless games
	PlayOut       bool
	VersionPosted bool
	GGPosted      bool
	PanicPosted   bool

	MapWidth, MapHeight int
}

var B *Bot

// New wraps an engine client and makes it the current bot. Logic has to be
// set before the first Step.
func New(c *client.Client) *Bot {
	b := &Bot{Bot: scl.New(c, OnUnitCreated)}
	B = b
	b.FramesPerOrder = 3
	b.LastLoop = -math.MaxInt
	b.MaxGroup = MaxGroup
	b.Init(false) // Called after B is set because Init() fires OnUnitCreated

	if info, err := c.GameInfo(); err != nil {
		log.Error(err)
	} else if size := info.StartRaw.MapSize; size != nil {
		b.MapWidth, b.MapHeight = int(size.X), int(size.Y)
	}
	return b
}

func ParseData() {
	B.ParseObservation()
	B.ParseUnits()
	B.ParseOrders()
	B.DetectEnemyRace()
}

// Seconds is the game time elapsed.
func (b *Bot) Seconds() float64 {
	return float64(b.Obs.GameLoop) / scl.FPS
}

func (b *Bot) Minutes() float64 {
	return b.Seconds() / 60
}

// Score is the engine's cumulative score for this player.
func (b *Bot) Score() float64 {
	if b.Obs == nil || b.Obs.Score == nil {
		return 0
	}
	return float64(b.Obs.Score.Score)
}

func GGCheck() bool {
	return (B.Minerals < 50 &&
		B.Units.MyAll.First(func(unit *scl.Unit) bool { return !unit.IsStructure() }) == nil &&
		B.Enemies.All.First(scl.DpsGt5) != nil) ||
		B.Units.MyAll.Filter(scl.Structure, scl.Ground).Empty()
}

func RecoverPanic() {
	if p := recover(); p != nil {
		helpers.ReportPanic(p)
		if !B.PanicPosted {
			B.Actions.ChatSend("Tag: Panic", api.ActionChat_Team)
			B.PanicPosted = true
		}
		B.Cmds.Process(&B.Actions)
		if len(B.Actions) > 0 {
			// Send actions if there were any before panic has occurred
			_, _ = B.Client.Action(api.RequestAction{Actions: B.Actions})
			B.Actions = nil
		}
	}
}

// Step is called each game step
func Step() {
	defer RecoverPanic()

	B.Cmds = &scl.CommandsStack{}
	B.Loop = int(B.Obs.GameLoop)
	if B.Loop >= 9 && !B.VersionPosted {
		B.Actions.ChatSend(version, api.ActionChat_Broadcast)
		B.VersionPosted = true
	}
	if B.Loop < B.LastLoop+B.FramesPerOrder {
		return // Skip frame repeat
	} else {
		B.LastLoop = B.Loop
	}

	ParseData()
	B.Logic()

	B.Cmds.Process(&B.Actions)
	if len(B.Actions) > 0 {
		if _, err := B.Client.Action(api.RequestAction{Actions: B.Actions}); err != nil {
			log.Error(err)
		}
		B.Actions = nil
	}

	if !B.PlayOut && !B.GGPosted && GGCheck() {
		B.Actions.ChatSend("(gg)", api.ActionChat_Broadcast)
		_, _ = B.Client.Action(api.RequestAction{Actions: B.Actions})
		B.Actions = nil
		B.GGPosted = true
		if err := B.Client.LeaveGame(); err != nil {
			log.Error(err)
		}
	}
}
