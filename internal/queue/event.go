// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is successfully
// created.  It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type ReservationConfirmedEvent struct {
    ReservationID uint64 `json:"reservation_id"`
    UserID        uint64 `json:"user_id"`
    RoomID        uint64 `json:"room_id"`
    RoomName      string `json:"room_name"`
    Title         string `json:"title"`
    StartTime     string `json:"start_time"`
    EndTime       string `json:"end_time"`
    ConfirmedAt   string `json:"confirmed_at"`
}
