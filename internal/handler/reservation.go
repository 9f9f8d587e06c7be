package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/room-reservation/internal/service"
)

// ReservationHandler owns the reservation booking rules: request
// validation, the time-range checks, and the per-room overlap guard.
// Create and Update run the overlap check and the write inside one
// transaction that first locks the room row, so two concurrent
// conflicting requests cannot both commit.  All methods assume JWT
// authentication has already been performed by middleware.
type ReservationHandler struct {
	Rooms        *repository.RoomRepo        // room catalog lookups and row locks
	Reservations *repository.ReservationRepo // reservation persistence
	PublishEvent bool                        // emit reservation.confirmed events when true
}

// NewReservationHandler constructs a ReservationHandler with the
// provided repositories.  All dependencies must be non-nil.
func NewReservationHandler(rooms *repository.RoomRepo, reservations *repository.ReservationRepo) *ReservationHandler {
	if rooms == nil || reservations == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{Rooms: rooms, Reservations: reservations}
}

// reservationReq is the body of POST and PUT reservation requests.
// Field order matters: the validator reports violations in declaration
// order, so the first failing field mirrors the order below.
type reservationReq struct {
	Title       string `json:"title" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Start       string `json:"start" validate:"required,datetime=15:04"`
	End         string `json:"end" validate:"required,datetime=15:04"`
	RoomID      uint64 `json:"room_id" validate:"required"`
}

var reservationMessages = map[string]string{
	"Title":       "title must be between 1 and 100 characters",
	"Description": "description must be at most 500 characters",
	"Date":        "date must be in YYYY-MM-DD format",
	"Start":       "start must be in HH:MM format",
	"End":         "end must be in HH:MM format",
	"RoomID":      "room_id is required",
}

// combineDateTime builds a UTC instant from a YYYY-MM-DD date and an
// HH:MM time of day.  The fixed UTC interpretation is deliberate: the
// same request body always names the same instant, regardless of the
// server's locale.
func combineDateTime(date, hhmm string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", date+" "+hhmm)
}

// parseReservationBody binds and validates the request, then resolves
// the start/end instants.  On failure it writes the error response and
// returns done=true.
func parseReservationBody(c echo.Context) (req reservationReq, start, end time.Time, done bool) {
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		return req, start, end, true
	}
	if err := validate.Struct(req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": firstValidationMessage(err, reservationMessages)})
		return req, start, end, true
	}
	var err error
	if start, err = combineDateTime(req.Date, req.Start); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be in YYYY-MM-DD format"})
		return req, start, end, true
	}
	if end, err = combineDateTime(req.Date, req.End); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "end must be in HH:MM format"})
		return req, start, end, true
	}
	if !end.After(start) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "end time must be after start time"})
		return req, start, end, true
	}
	if start.Before(time.Now().UTC()) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot create reservations in the past"})
		return req, start, end, true
	}
	return req, start, end, false
}

// optionalDescription converts the bound string into the nullable
// column representation: empty means NULL.
func optionalDescription(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListReservations handles GET /v1/reservations.  It returns the
// caller's reservations with their rooms embedded, ordered by start
// time ascending.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Reservations.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, details)
}

// CreateReservation handles POST /v1/reservations.  Checks run in
// order: shape validation, end > start, start not in the past, room
// exists, no overlapping reservation on the room.  The room-exists
// check doubles as the room row lock that serializes concurrent
// writes for the same room.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	req, start, end, done := parseReservationBody(c)
	if done {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	room, err := h.Rooms.LockByIDTx(ctx, tx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	conflict, err := h.Reservations.OverlapExistsTx(ctx, tx, room.ID, start, end, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if conflict {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is not available for that time"})
	}

	rec := &repository.ReservationRecord{
		UserID:      userID,
		RoomID:      room.ID,
		Title:       req.Title,
		Description: optionalDescription(req.Description),
		StartTime:   start,
		EndTime:     end,
	}
	if err := h.Reservations.CreateTx(ctx, tx, rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if h.PublishEvent {
		evt := queue.ReservationConfirmedEvent{
			ReservationID: rec.ID,
			UserID:        userID,
			RoomID:        room.ID,
			RoomName:      room.Name,
			Title:         rec.Title,
			StartTime:     start.Format(time.RFC3339),
			EndTime:       end.Format(time.RFC3339),
			ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		// Best effort: a broker outage must not fail the booking.
		go func() { _ = queue_publisher.PublishReservationConfirmed(context.Background(), evt) }()
	}

	return c.JSON(http.StatusCreated, detailFromRecord(rec, room))
}

// UpdateReservation handles PUT /v1/reservations/:id.  It re-runs the
// create-time checks with the overlap scan excluding the reservation
// itself.  A reservation that is absent or owned by another user is
// reported identically as 404 so callers cannot probe for foreign
// reservations.
func (h *ReservationHandler) UpdateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	req, start, end, done := parseReservationBody(c)
	if done {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	existing, err := h.Reservations.GetForUpdateTx(ctx, tx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if existing.UserID != userID {
		// Same response as a missing row on purpose.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	room, err := h.Rooms.LockByIDTx(ctx, tx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	conflict, err := h.Reservations.OverlapExistsTx(ctx, tx, room.ID, start, end, reservationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if conflict {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is not available for that time"})
	}

	rec := &repository.ReservationRecord{
		ID:          reservationID,
		UserID:      userID,
		RoomID:      room.ID,
		Title:       req.Title,
		Description: optionalDescription(req.Description),
		StartTime:   start,
		EndTime:     end,
		CreatedAt:   existing.CreatedAt,
	}
	if err := h.Reservations.UpdateTx(ctx, tx, rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusOK, detailFromRecord(rec, room))
}

// DeleteReservation handles DELETE /v1/reservations/:id.  The delete
// statement filters on both id and owner, so missing and foreign
// reservations fail the same way.
func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.DeleteOwned(ctx, reservationID, userID); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// detailFromRecord assembles the response for a just-written
// reservation from the record and its already-loaded room, avoiding a
// second join query.
func detailFromRecord(rec *repository.ReservationRecord, room model.Room) repository.ReservationDetail {
	return repository.ReservationDetail{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		StartTime:   rec.StartTime.UTC().Format(time.RFC3339),
		EndTime:     rec.EndTime.UTC().Format(time.RFC3339),
		UserID:      rec.UserID,
		RoomID:      rec.RoomID,
		CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
		Room: repository.RoomPart{
			ID:          room.ID,
			Name:        room.Name,
			Description: room.Description,
			Capacity:    room.Capacity,
			Location:    room.Location,
			Amenities:   room.Amenities,
		},
	}
}
