package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "time"
)

// ReservationRepo provides CRUD operations for room reservations.
// A reservation occupies a half-open [start_time, end_time) interval
// on a single room, and no two reservations on the same room may
// overlap.  The overlap check and the following write always run in
// the same transaction, after the caller has locked the room row via
// RoomRepo.LockByIDTx, so concurrent conflicting writes cannot both
// commit.  All timestamp fields are stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// ReservationRecord mirrors the schema of the reservations table.  It is
// used internally by the repository when constructing or scanning rows.
type ReservationRecord struct {
    ID          uint64
    UserID      uint64
    RoomID      uint64
    Title       string
    Description *string
    StartTime   time.Time
    EndTime     time.Time
    CreatedAt   time.Time
    UpdatedAt   time.Time
}

// RoomPart carries the room attributes embedded in reservation
// responses.  It duplicates model.Room with JSON tags because the
// repository returns display-ready detail structs, mirroring how the
// catalog is serialized elsewhere.
type RoomPart struct {
    ID          uint64   `json:"id"`
    Name        string   `json:"name"`
    Description *string  `json:"description,omitempty"`
    Capacity    uint32   `json:"capacity"`
    Location    *string  `json:"location,omitempty"`
    Amenities   []string `json:"amenities"`
}

// ReservationDetail is a reservation joined with its room, as returned
// to the owning user.  Times are RFC3339 UTC strings.
type ReservationDetail struct {
    ID          uint64   `json:"id"`
    Title       string   `json:"title"`
    Description *string  `json:"description,omitempty"`
    StartTime   string   `json:"start_time"`
    EndTime     string   `json:"end_time"`
    UserID      uint64   `json:"user_id"`
    RoomID      uint64   `json:"room_id"`
    CreatedAt   string   `json:"created_at"`
    Room        RoomPart `json:"room"`
}

const reservationJoinColumns = `r.id, r.title, r.description, r.start_time, r.end_time,
                      r.user_id, r.room_id, r.created_at,
                      rm.id, rm.name, rm.description, rm.capacity, rm.location, rm.amenities`

// scanDetail reads one joined reservation+room row.
func scanDetail(scan func(dest ...any) error) (ReservationDetail, error) {
    var (
        d         ReservationDetail
        resDesc   sql.NullString
        start     time.Time
        end       time.Time
        createdAt time.Time
        roomDesc  sql.NullString
        roomLoc   sql.NullString
        amenities []byte
    )
    if err := scan(
        &d.ID, &d.Title, &resDesc, &start, &end,
        &d.UserID, &d.RoomID, &createdAt,
        &d.Room.ID, &d.Room.Name, &roomDesc, &d.Room.Capacity, &roomLoc, &amenities,
    ); err != nil {
        return ReservationDetail{}, err
    }
    if resDesc.Valid {
        v := resDesc.String
        d.Description = &v
    }
    d.StartTime = start.UTC().Format(time.RFC3339)
    d.EndTime = end.UTC().Format(time.RFC3339)
    d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
    if roomDesc.Valid {
        v := roomDesc.String
        d.Room.Description = &v
    }
    if roomLoc.Valid {
        v := roomLoc.String
        d.Room.Location = &v
    }
    d.Room.Amenities = []string{}
    if len(amenities) > 0 {
        if err := json.Unmarshal(amenities, &d.Room.Amenities); err != nil {
            return ReservationDetail{}, err
        }
    }
    return d, nil
}

// ListByUser returns all reservations owned by the given user with
// their rooms embedded, ordered by start time ascending.  When no
// reservations exist, an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
    const q = `SELECT ` + reservationJoinColumns + `
               FROM reservations r
               JOIN rooms rm ON rm.id = r.room_id
               WHERE r.user_id = ?
               ORDER BY r.start_time ASC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]ReservationDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows.Scan)
        if err != nil {
            return nil, err
        }
        details = append(details, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return details, nil
}

// GetDetail returns a single reservation joined with its room.  It does
// not filter by owner; callers decide how to treat foreign records.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (ReservationDetail, error) {
    const q = `SELECT ` + reservationJoinColumns + `
               FROM reservations r
               JOIN rooms rm ON rm.id = r.room_id
               WHERE r.id = ?`
    d, err := scanDetail(r.db.QueryRowContext(ctx, q, id).Scan)
    if err == sql.ErrNoRows {
        return ReservationDetail{}, ErrReservationNotFound
    }
    return d, err
}

// GetForUpdateTx loads a reservation row inside a transaction with a
// row lock, so an Update holds the record stable while it revalidates
// the time range.  Returns ErrReservationNotFound when the row is
// absent; the ownership comparison is left to the caller so that
// "absent" and "not owned" collapse into the same error there.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (ReservationRecord, error) {
    const q = `SELECT id, user_id, room_id, title, description, start_time, end_time, created_at, updated_at
               FROM reservations WHERE id = ? FOR UPDATE`
    var (
        rec  ReservationRecord
        desc sql.NullString
    )
    err := tx.QueryRowContext(ctx, q, id).Scan(
        &rec.ID, &rec.UserID, &rec.RoomID, &rec.Title, &desc,
        &rec.StartTime, &rec.EndTime, &rec.CreatedAt, &rec.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return ReservationRecord{}, ErrReservationNotFound
    }
    if err != nil {
        return ReservationRecord{}, err
    }
    if desc.Valid {
        v := desc.String
        rec.Description = &v
    }
    return rec, nil
}

// OverlapExistsTx reports whether any reservation on the room overlaps
// the half-open [start, end) interval.  Intervals that merely touch
// (existing end == new start) do not overlap.  excludeID removes the
// record being updated from the scan; pass 0 on create.  Must run in
// the same transaction that locked the room row.
func (r *ReservationRepo) OverlapExistsTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
    const q = `SELECT EXISTS (
                   SELECT 1 FROM reservations
                   WHERE room_id = ? AND start_time < ? AND end_time > ? AND id <> ?
               )`
    var exists bool
    if err := tx.QueryRowContext(ctx, q, roomID, end, start, excludeID).Scan(&exists); err != nil {
        return false, err
    }
    return exists, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction.  It populates the generated ID and timestamps on the
// provided record.  The caller must commit or rollback.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *ReservationRecord) error {
    const q = `INSERT INTO reservations (user_id, room_id, title, description, start_time, end_time)
               VALUES (?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, rec.UserID, rec.RoomID, rec.Title, rec.Description, rec.StartTime, rec.EndTime)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    rec.ID = uint64(id)
    // Query back the row to populate the DB-generated timestamps.
    const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, rec.ID).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

// UpdateTx overwrites a reservation's title, description, room and time
// range within an existing transaction.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sql.Tx, rec *ReservationRecord) error {
    const q = `UPDATE reservations
               SET title = ?, description = ?, room_id = ?, start_time = ?, end_time = ?
               WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, rec.Title, rec.Description, rec.RoomID, rec.StartTime, rec.EndTime, rec.ID)
    return err
}

// DeleteOwned removes a reservation only when it belongs to the given
// user.  A missing row and a row owned by someone else both come back
// as ErrReservationNotFound, by the same information-hiding rule the
// update path follows.
func (r *ReservationRepo) DeleteOwned(ctx context.Context, id, userID uint64) error {
    const q = `DELETE FROM reservations WHERE id = ? AND user_id = ?`
    res, err := r.db.ExecContext(ctx, q, id, userID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrReservationNotFound
    }
    return nil
}
