package agent

import (
	"image"

	log "bitbucket.org/aisee/minilog"

	"github.com/AoHRuthless/AIur/bot"
	"github.com/AoHRuthless/AIur/macro"
	"github.com/AoHRuthless/AIur/micro"
	"github.com/AoHRuthless/AIur/minimap"
	"github.com/AoHRuthless/AIur/policy"
	"github.com/AoHRuthless/AIur/roles"
	"github.com/AoHRuthless/AIur/viewer"
)

// PreviewScale is the zoom of frames published to the viewer.
const PreviewScale = 2

// Agent plays one game at a time: it renders the state, lets the selector pick
// a slot and runs it, feeding the trainer along the way.
type Agent struct {
	Selector *policy.Selector
	Trainer  *Trainer
	Hub      *viewer.Hub // optional

	Height, Width int
	PublishEvery  int // steps between viewer frames
}

// Start binds the agent to a new game.
func (a *Agent) Start(b *bot.Bot) {
	macro.Init(b)
	micro.Init(b)
	roles.Init(b)
	a.Trainer.Reset()
	a.Selector.NextActionable = 0
	b.Logic = a.Logic
}

// Logic is run by bot.Step on every processed frame.
func (a *Agent) Logic() {
	roles.BuildingsCheck()
	roles.Build()
	roles.Mine()
	macro.LowerDepots()
	macro.Mules()
	micro.Stim()
	micro.Escort()

	img := minimap.Render(bot.Snapshot())
	a.publish(img)
	a.Trainer.Observe(minimap.Tensor(img, a.Height, a.Width), bot.B.Score())

	if micro.LastStand() {
		a.Trainer.Act(0)
		return
	}

	now := bot.B.Seconds()
	slot := a.Selector.Decide(now, a.Trainer.State())
	a.Trainer.Act(slot)
	micro.PrepareWaves()
	a.Selector.Execute(now, slot)
}

func (a *Agent) publish(img image.Image) {
	if a.Hub == nil || a.Hub.Clients() == 0 {
		return
	}
	if a.PublishEvery > 1 && a.Trainer.Steps()%a.PublishEvery != 0 {
		return
	}
	frame, err := minimap.EncodePNG(minimap.Preview(img, PreviewScale))
	if err != nil {
		log.Error(err)
		return
	}
	a.Hub.Publish(frame)
}
