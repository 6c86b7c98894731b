package text

import "time"

// now returns the current wall-clock time truncated to the second.
// Tests can substitute a deterministic clock via the unexported clock
// field (see setClock in revision_test.go) instead of sleeping real
// time.
func (t *Text) now() time.Time {
	if t.clock != nil {
		return t.clock().Truncate(time.Second)
	}

	return time.Now().Truncate(time.Second)
}
