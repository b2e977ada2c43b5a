// Package queue defines message payloads exchanged over the message broker.
package queue

// Rating event types published on the rating.events queue.
const (
	RatingCreated = "created"
	RatingUpdated = "updated"
	RatingDeleted = "deleted"
)

// RatingEvent is published whenever a rating is created, updated or deleted.
// It contains enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.  Delivery is
// best-effort: the request path never fails because of the broker.
type RatingEvent struct {
	Event      string `json:"event"`
	RatingID   uint64 `json:"rating_id"`
	UserID     uint64 `json:"user_id"`
	MovieID    uint64 `json:"movie_id"`
	Rating     int    `json:"rating"`
	OccurredAt string `json:"occurred_at"`
}
