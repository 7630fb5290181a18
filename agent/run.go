package agent

import (
	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/client"

	"github.com/AoHRuthless/AIur/bot"
)

// Outcome of one game.
type Outcome struct {
	Result  api.Result
	Seconds int
}

func (o Outcome) Victory() bool { return o.Result == api.Result_Victory }

// Play runs a game on c to its end. OnStart, when set, runs once the bot is
// bound, before the first step.
func (a *Agent) Play(c *client.Client, playOut bool, onStart func(b *bot.Bot)) Outcome {
	b := bot.New(c)
	b.PlayOut = playOut
	a.Start(b)
	if onStart != nil {
		onStart(b)
	}

	for b.Client.Status == api.Status_in_game {
		bot.Step()
		if _, err := c.Step(api.RequestStep{Count: uint32(b.FramesPerOrder)}); err != nil {
			if err.Error() != "Not in a game" {
				log.Error(err)
			}
			break
		}
		b.UpdateObservation()
	}

	if len(b.Result) == 0 {
		b.UpdateObservation()
	}
	out := Outcome{Result: api.Result_Undecided, Seconds: int(float64(b.Loop) / scl.FPS)}
	myId := int(b.Obs.PlayerCommon.PlayerId)
	if myId > 0 && myId <= len(b.Result) {
		out.Result = b.Result[myId-1].Result
	}
	log.Infof("Game over: %v vs %v after %ds", out.Result, b.EnemyRace, out.Seconds)
	return out
}
