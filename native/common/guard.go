package common

import "errors"

// ErrModulePaused is returned when a guarded operation is attempted while the
// owning module's pause switch is engaged.
var ErrModulePaused = errors.New("module paused")

// Toggle is the pause switch shared by the settlement engines. Engines embed
// one and consult Guard at the top of every gated entry point. Operations are
// single-writer per the deterministic execution model, so no locking is
// required.
type Toggle struct {
	paused bool
}

// Pause engages the switch.
func (t *Toggle) Pause() { t.paused = true }

// Unpause releases the switch.
func (t *Toggle) Unpause() { t.paused = false }

// Paused reports whether the switch is engaged.
func (t *Toggle) Paused() bool {
	return t != nil && t.paused
}

// Guard returns ErrModulePaused while the switch is engaged.
func (t *Toggle) Guard() error {
	if t.Paused() {
		return ErrModulePaused
	}
	return nil
}
