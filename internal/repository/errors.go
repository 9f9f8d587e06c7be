// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto HTTP status codes.
package repository

import "errors"

// ErrEmailExists is returned when registering or changing to an email
// address that is already taken. Handlers should translate this into
// an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrRoomNotFound is returned when a referenced room does not exist
// in the catalog. Handlers should translate this into an HTTP 404
// response.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when a reservation does not
// exist or does not belong to the calling user. The two cases are
// deliberately indistinguishable so that callers cannot probe for
// other users' reservations. Handlers should translate this into an
// HTTP 404 response.
var ErrReservationNotFound = errors.New("reservation not found")
