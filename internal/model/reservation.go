package model

import "time"

// Reservation records a user's booking of a room for a time range.
// The [StartTime, EndTime) interval is half-open: a reservation
// ending at 15:00 does not collide with one starting at 15:00.
// All timestamps are stored and compared in UTC.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who owns the reservation.
//  RoomID      – room being reserved.
//  Title       – short label (1–100 characters).
//  Description – optional details (up to 500 characters).
//  StartTime   – inclusive start instant in UTC.
//  EndTime     – exclusive end instant in UTC.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
    ID          uint64    // reservations.id
    UserID      uint64    // reservations.user_id
    RoomID      uint64    // reservations.room_id
    Title       string    // reservations.title
    Description *string   // reservations.description (nullable)
    StartTime   time.Time // reservations.start_time
    EndTime     time.Time // reservations.end_time
    CreatedAt   time.Time // reservations.created_at
    UpdatedAt   time.Time // reservations.updated_at
}
