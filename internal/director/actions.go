package director

import (
	"fmt"
	"strings"

	"github.com/ivlev/scrollsite/internal/progress"
)

// Action is what a toggle timeline does when one of its boundaries is
// crossed.
type Action string

const (
	ActionPlay     Action = "play"
	ActionReverse  Action = "reverse"
	ActionRestart  Action = "restart"
	ActionReset    Action = "reset"
	ActionComplete Action = "complete"
	ActionNone     Action = "none"
)

// ToggleActions maps the four crossings, in the order enter, leave,
// enterBack, leaveBack.
type ToggleActions [4]Action

// DefaultToggleActions plays forward on enter and reverses when scrolled back
// above the start.
var DefaultToggleActions = ToggleActions{ActionPlay, ActionNone, ActionNone, ActionReverse}

// ParseToggleActions reads the four-word form "play none none reverse". An
// empty string yields DefaultToggleActions.
func ParseToggleActions(s string) (ToggleActions, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return DefaultToggleActions, nil
	}
	if len(fields) != 4 {
		return ToggleActions{}, fmt.Errorf("toggle actions %q: want 4 words, got %d", s, len(fields))
	}
	var ta ToggleActions
	for i, f := range fields {
		switch a := Action(f); a {
		case ActionPlay, ActionReverse, ActionRestart, ActionReset, ActionComplete, ActionNone:
			ta[i] = a
		default:
			return ToggleActions{}, fmt.Errorf("toggle actions %q: unknown action %q", s, f)
		}
	}
	return ta, nil
}

func (ta ToggleActions) String() string {
	return strings.Join([]string{string(ta[0]), string(ta[1]), string(ta[2]), string(ta[3])}, " ")
}

// crossingOrder is the order events are handled inside one frame; a jump
// across the whole range enters before it leaves.
var crossingOrder = []progress.Event{
	progress.EventEnter,
	progress.EventLeave,
	progress.EventEnterBack,
	progress.EventLeaveBack,
}

// For returns the action bound to a single crossing.
func (ta ToggleActions) For(ev progress.Event) Action {
	for i, c := range crossingOrder {
		if ev == c {
			if ta[i] == "" {
				return ActionNone
			}
			return ta[i]
		}
	}
	return ActionNone
}
