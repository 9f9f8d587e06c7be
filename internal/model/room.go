package model

import "time"

// Room represents a bookable meeting room from the `rooms` table.
// Rooms form a read-mostly catalog: they are created by the seed
// process and never mutated through the API.  The amenities list
// is persisted as a JSON array in a single column.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique human-readable room name.
//  Description – optional free-text description.
//  Capacity    – maximum number of people the room holds.
//  Location    – optional floor/building label used for ordering.
//  Amenities   – ordered list of amenity labels (JSON column).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Room struct {
    ID          uint64    // rooms.id
    Name        string    // rooms.name
    Description *string   // rooms.description (nullable)
    Capacity    uint32    // rooms.capacity
    Location    *string   // rooms.location (nullable)
    Amenities   []string  // rooms.amenities (JSON array)
    CreatedAt   time.Time // rooms.created_at
    UpdatedAt   time.Time // rooms.updated_at
}
