package bout

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Phase is the bout lifecycle state.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"

	eventFinish = "finish"
)

// newPhaseMachine builds the two-state lifecycle. onFinish runs once when
// the bout enters PhaseFinished.
func newPhaseMachine(onFinish func()) *fsm.FSM {
	return fsm.NewFSM(
		string(PhaseInProgress),
		fsm.Events{
			{Name: eventFinish, Src: []string{string(PhaseInProgress)}, Dst: string(PhaseFinished)},
		},
		fsm.Callbacks{
			"enter_" + string(PhaseFinished): func(_ context.Context, _ *fsm.Event) {
				if onFinish != nil {
					onFinish()
				}
			},
		},
	)
}

// finish moves the machine to PhaseFinished. It is only called while the
// bout is in progress, so a failed transition is an invariant violation.
func finish(m *fsm.FSM) {
	if err := m.Event(context.Background(), eventFinish); err != nil {
		panic(fmt.Sprintf("bout: finish transition: %v", err))
	}
}
