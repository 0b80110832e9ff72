package redis

import "fmt"

const ns = "src:v1"

// KeyEventAvailability namespaces the cached, session-agnostic
// list_availability projection for one event.
func KeyEventAvailability(eventID string) string {
	return fmt.Sprintf("%s:event:%s:availability", ns, eventID)
}

// KeyRateLimit namespaces a sliding-window rate-limit bucket by scope
// (e.g. "session") and identifier.
func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}
