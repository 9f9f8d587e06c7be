package repository

import (
    "context"
    "database/sql"
    "encoding/json"

    "github.com/iliyamo/room-reservation/internal/model"
)

// RoomRepo provides read access to the room catalog.  Rooms are
// reference data created by the seed process; the API never mutates
// them, so this repository only exposes lookups.  The amenities
// column holds a JSON array of strings and is decoded on scan.
type RoomRepo struct {
    db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span the room lock and the reservation write.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, name, description, capacity, location, amenities, created_at, updated_at`

// scanRoom reads one row of roomColumns into a model.Room.
func scanRoom(scan func(dest ...any) error) (model.Room, error) {
    var (
        rm        model.Room
        desc      sql.NullString
        loc       sql.NullString
        amenities []byte
    )
    if err := scan(&rm.ID, &rm.Name, &desc, &rm.Capacity, &loc, &amenities, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
        return model.Room{}, err
    }
    if desc.Valid {
        d := desc.String
        rm.Description = &d
    }
    if loc.Valid {
        l := loc.String
        rm.Location = &l
    }
    rm.Amenities = []string{}
    if len(amenities) > 0 {
        if err := json.Unmarshal(amenities, &rm.Amenities); err != nil {
            return model.Room{}, err
        }
    }
    return rm, nil
}

// List returns the whole catalog ordered by location then name so the
// listing groups rooms by floor. Rooms without a location sort first.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY location, name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Room, 0)
    for rows.Next() {
        rm, err := scanRoom(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, rm)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetByID returns a single room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
    rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id).Scan)
    if err == sql.ErrNoRows {
        return model.Room{}, ErrRoomNotFound
    }
    return rm, err
}

// LockByIDTx loads a room inside a transaction while taking a row lock
// on it (SELECT ... FOR UPDATE). Concurrent reservation writes for the
// same room serialize on this lock, which makes the overlap check and
// the subsequent insert atomic per room. Returns ErrRoomNotFound when
// the room does not exist.
func (r *RoomRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
    const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? FOR UPDATE`
    rm, err := scanRoom(tx.QueryRowContext(ctx, q, id).Scan)
    if err == sql.ErrNoRows {
        return model.Room{}, ErrRoomNotFound
    }
    return rm, err
}

// Upsert inserts a room by unique name or refreshes its attributes when
// it already exists. Only the seed process calls this.
func (r *RoomRepo) Upsert(ctx context.Context, rm *model.Room) error {
    amenities, err := json.Marshal(rm.Amenities)
    if err != nil {
        return err
    }
    const q = `INSERT INTO rooms (name, description, capacity, location, amenities)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE description = VALUES(description),
                                       capacity = VALUES(capacity),
                                       location = VALUES(location),
                                       amenities = VALUES(amenities)`
    res, err := r.db.ExecContext(ctx, q, rm.Name, rm.Description, rm.Capacity, rm.Location, amenities)
    if err != nil {
        return err
    }
    if id, err := res.LastInsertId(); err == nil && id > 0 {
        rm.ID = uint64(id)
    } else {
        // Updated an existing row; fetch its id by unique name.
        const sel = `SELECT id FROM rooms WHERE name = ?`
        if err := r.db.QueryRowContext(ctx, sel, rm.Name).Scan(&rm.ID); err != nil {
            return err
        }
    }
    return nil
}
