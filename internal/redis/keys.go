package redisx

const ns = "src:v1"

// ChannelEventsChanged is the pub/sub channel the core announces every
// committed availability change on (spec §9 "Capacity as a computed
// quantity" — any read-model subscribed here can recompute its own cache
// rather than polling).
func ChannelEventsChanged() string {
	return ns + ":events:changed"
}
