package brain

import (
	"github.com/Rashandd/rashplayer/shm"
)

// transition advances the lifecycle machine by one tick. hasResults
// means the frame produced results and every populated one was found;
// actionPending means rule evaluation selected an action this tick.
// PAUSED and ERROR never transition here; only an explicit SetState
// leaves them.
func transition(current shm.GameState, hasResults, actionPending bool) shm.GameState {
	switch current {
	case shm.STATE_IDLE:
		if hasResults {
			return shm.STATE_DETECTING
		}

	case shm.STATE_DETECTING:
		if actionPending {
			return shm.STATE_ACTION_PENDING
		}
		if !hasResults {
			return shm.STATE_IDLE
		}

	case shm.STATE_ACTION_PENDING:
		return shm.STATE_EXECUTING

	case shm.STATE_EXECUTING:
		return shm.STATE_DETECTING

	case shm.STATE_PAUSED, shm.STATE_ERROR:
		// external resume/reset only
	}

	return current
}
