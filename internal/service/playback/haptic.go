package playback

import (
	"sync"
	"time"

	"github.com/covertcloak/scripture-alarm/internal/device"
)

// hapticClaim is one alert's request for the vibration motor.
type hapticClaim struct {
	owner  *Orchestrator
	repeat bool
}

// hapticArbiter shares the single vibration motor between overlapping
// alerts. The newest claim drives the motor. When it is released the motor
// goes back to the newest remaining sustained claim, so one alert ending
// never silences another alert's vibration.
type hapticArbiter struct {
	haptic  device.Haptic
	pattern []time.Duration

	mu     sync.Mutex
	claims []hapticClaim
}

func (a *hapticArbiter) play(owner *Orchestrator, repeat bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.claims = append(a.without(owner), hapticClaim{owner: owner, repeat: repeat})
	a.haptic.Vibrate(a.pattern, repeat)
}

// release drops owner's claim. The motor is touched only when owner was
// driving it.
func (a *hapticArbiter) release(owner *Orchestrator) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.claims) == 0 {
		return
	}

	top := a.claims[len(a.claims)-1].owner
	a.claims = a.without(owner)

	if top != owner {
		return
	}

	a.haptic.Cancel()

	// One-shot cues underneath were already replaced on the motor.
	sustained := a.claims[:0]
	for _, c := range a.claims {
		if c.repeat {
			sustained = append(sustained, c)
		}
	}

	a.claims = sustained

	if len(a.claims) > 0 {
		a.haptic.Vibrate(a.pattern, true)
	}
}

func (a *hapticArbiter) without(owner *Orchestrator) []hapticClaim {
	kept := make([]hapticClaim, 0, len(a.claims)+1)
	for _, c := range a.claims {
		if c.owner != owner {
			kept = append(kept, c)
		}
	}

	return kept
}
