// Package queue defines message payloads exchanged over the message broker.
package queue

// POI change actions carried in POIChangedEvent.Action.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// POIChangedEvent is published after an admin mutation of the POI
// directory.  It carries enough for downstream consumers to log, refresh
// caches or trigger re-indexing without querying the primary database.
type POIChangedEvent struct {
	Action     string `json:"action"` // created | updated | deleted
	POIID      uint64 `json:"poi_id"`
	Name       string `json:"name"`
	ActorID    uint64 `json:"actor_id"` // admin who performed the mutation
	OccurredAt string `json:"occurred_at"`
}
