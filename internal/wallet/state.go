package wallet

import (
	"context"

	"github.com/rs/zerolog"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet/chain"
)

// State is a step of the deposit/withdraw state machine.
type State string

const (
	StateValidating          State = "validating"
	StateResolvingCredential State = "resolving-credential"
	StateApproving           State = "approving"
	StateSubmitting          State = "submitting"
	StateConfirming          State = "confirming"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

// Tracker walks one operation through its states. Failed is reachable from any state;
// nothing leaves Done or Failed.
type Tracker struct {
	op      string
	network chain.Network
	log     zerolog.Logger
	history []State
}

func NewTracker(ctx context.Context, op string, network chain.Network) *Tracker {
	t := &Tracker{
		op:      op,
		network: network,
		log:     util.LogFromContext(ctx).With().Str("op", op).Str("network", string(network)).Logger(),
	}
	t.Enter(StateValidating)
	return t
}

// Enter moves to s. Transitions out of a terminal state are ignored.
func (t *Tracker) Enter(s State) {
	if t.terminal() {
		return
	}
	t.history = append(t.history, s)
	t.log.Debug().Str("state", string(s)).Msg("Operation state changed")
}

// Fail moves to Failed and returns err unchanged.
func (t *Tracker) Fail(err error) error {
	if t.terminal() {
		return err
	}
	from := t.State()
	t.history = append(t.history, StateFailed)
	t.log.Warn().Err(err).Str("from", string(from)).Msg("Operation failed")
	return err
}

// Done moves to the Done state.
func (t *Tracker) Done() {
	t.Enter(StateDone)
}

func (t *Tracker) State() State {
	if len(t.history) == 0 {
		return ""
	}
	return t.history[len(t.history)-1]
}

// History returns every state visited, in order.
func (t *Tracker) History() []State {
	out := make([]State, len(t.history))
	copy(out, t.history)
	return out
}

func (t *Tracker) terminal() bool {
	s := t.State()
	return s == StateDone || s == StateFailed
}
