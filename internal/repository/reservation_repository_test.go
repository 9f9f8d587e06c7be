package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newReservationRepo(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewReservationRepo(db), mock, func() { _ = db.Close() }
}

// The overlap predicate compares the half-open intervals as
// existing.start < new.end AND existing.end > new.start, so intervals
// that merely touch never count as conflicts. The test pins the
// argument order the query expects.
func TestOverlapExistsTxArgumentOrder(t *testing.T) {
	repo, mock, cleanup := newReservationRepo(t)
	defer cleanup()

	start := time.Date(2030, 6, 1, 14, 0, 0, 0, time.UTC)
	end := time.Date(2030, 6, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(3), end, start, int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	conflict, err := repo.OverlapExistsTx(context.Background(), tx, 3, start, end, 9)
	if err != nil {
		t.Fatalf("OverlapExistsTx: %v", err)
	}
	if !conflict {
		t.Fatal("expected conflict to be reported")
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDeleteOwnedMissingRow(t *testing.T) {
	repo, mock, cleanup := newReservationRepo(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM reservations WHERE id = \? AND user_id = \?`).
		WithArgs(int64(5), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteOwned(context.Background(), 5, 7)
	if err != ErrReservationNotFound {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestListByUserMapsJoinedRows(t *testing.T) {
	repo, mock, cleanup := newReservationRepo(t)
	defer cleanup()

	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "start_time", "end_time",
		"user_id", "room_id", "created_at",
		"room_id", "room_name", "room_description", "capacity", "location", "amenities",
	}).
		AddRow(int64(10), "Entrevista", nil, now, now.Add(time.Hour),
			int64(7), int64(3), now,
			int64(3), "Sala de Reuniones B", "Sala mediana", int64(10), "Piso 2", []byte(`["TV","Pizarra"]`)).
		AddRow(int64(11), "Demo", "con cliente", now.Add(2*time.Hour), now.Add(3*time.Hour),
			int64(7), int64(1), now,
			int64(1), "Sala de Conferencias A", nil, int64(20), nil, []byte(`[]`))
	mock.ExpectQuery(`FROM reservations r`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	details, err := repo.ListByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(details))
	}

	first := details[0]
	if first.Title != "Entrevista" || first.Description != nil {
		t.Fatalf("unexpected first reservation: %+v", first)
	}
	if first.StartTime != "2030-06-01T12:00:00Z" {
		t.Fatalf("unexpected start time: %s", first.StartTime)
	}
	if first.Room.Name != "Sala de Reuniones B" || len(first.Room.Amenities) != 2 {
		t.Fatalf("unexpected room: %+v", first.Room)
	}

	second := details[1]
	if second.Description == nil || *second.Description != "con cliente" {
		t.Fatalf("unexpected second description: %v", second.Description)
	}
	if second.Room.Location != nil {
		t.Fatalf("null location must stay nil: %v", second.Room.Location)
	}
	if len(second.Room.Amenities) != 0 {
		t.Fatalf("expected empty amenities, got %v", second.Room.Amenities)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreateTxPopulatesRecord(t *testing.T) {
	repo, mock, cleanup := newReservationRepo(t)
	defer cleanup()

	start := time.Date(2030, 6, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	created := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(int64(7), int64(3), "Entrevista", nil, start, end).
		WillReturnResult(sqlmock.NewResult(99, 1))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM reservations`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))
	mock.ExpectCommit()

	tx, err := repo.DB().Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	rec := &ReservationRecord{UserID: 7, RoomID: 3, Title: "Entrevista", StartTime: start, EndTime: end}
	if err := repo.CreateTx(context.Background(), tx, rec); err != nil {
		t.Fatalf("CreateTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if rec.ID != 99 {
		t.Fatalf("expected generated id 99, got %d", rec.ID)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, rec.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
