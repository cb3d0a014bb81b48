package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreFindActiveUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("select id, username, email, password_hash, rol_id, activo, eliminado, totp_habilitado, created_at from usuarios").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "rol_id", "activo", "eliminado", "totp_habilitado", "created_at",
		}).AddRow(int64(1), "admin", "admin@example.com", "$2a$12$hash", int64(1), true, false, false, created))

	store := NewPGStore(db)
	user, err := store.FindActiveUser(context.Background(), "admin")
	if err != nil {
		t.Fatalf("FindActiveUser: %v", err)
	}
	if user.ID != 1 || user.Username != "admin" || user.RoleID != 1 {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFindActiveUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("from usuarios").
		WithArgs("nadie").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "password_hash", "rol_id", "activo", "eliminado", "totp_habilitado", "created_at",
		}))

	store := NewPGStore(db)
	if _, err := store.FindActiveUser(context.Background(), "nadie"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreRolePermissions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select p.nombre from permisos p").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"nombre"}).
			AddRow("leer_ventas").
			AddRow("ventas.crear"))

	store := NewPGStore(db)
	perms, err := store.RolePermissions(context.Background(), 1)
	if err != nil {
		t.Fatalf("RolePermissions: %v", err)
	}
	if len(perms) != 2 || perms[0] != "leer_ventas" {
		t.Fatalf("unexpected permissions: %v", perms)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFailedAttempts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	last := time.Now().UTC().Add(-5 * time.Minute)
	mock.ExpectQuery("select count").
		WithArgs(int64(1), OutcomeFailure, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(3, last))

	store := NewPGStore(db)
	count, mostRecent, err := store.FailedAttempts(context.Background(), 1, time.Hour)
	if err != nil {
		t.Fatalf("FailedAttempts: %v", err)
	}
	if count != 3 || !mostRecent.Equal(last) {
		t.Fatalf("unexpected aggregate: count=%d last=%v", count, mostRecent)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreRecordAttempt(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into intentos_acceso").
		WithArgs(sqlmock.AnyArg(), int64(1), OutcomeFailure, "10.0.0.1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewPGStore(db)
	attempt := &AccessAttempt{
		UserID:   1,
		Outcome:  OutcomeFailure,
		OriginIP: "10.0.0.1",
		Metadata: map[string]any{"user_agent": "test"},
	}
	if err := store.RecordAttempt(context.Background(), attempt); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if attempt.ID == "" {
		t.Fatalf("expected generated attempt id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreRecordAttemptBadMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewPGStore(db)
	attempt := &AccessAttempt{
		UserID:   1,
		Outcome:  OutcomeFailure,
		Metadata: map[string]any{"bad": make(chan int)},
	}
	if err := store.RecordAttempt(context.Background(), attempt); err == nil {
		t.Fatalf("expected marshal error for unserializable metadata")
	}
	// The ledger row must not be written with mangled metadata.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no insert expected: %v", err)
	}
}

func TestPGStoreUserBranches(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("from sucursales").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "codigo"}).
			AddRow(int64(1), "Casa Central", "CC"))

	store := NewPGStore(db)
	branches, err := store.UserBranches(context.Background(), 1)
	if err != nil {
		t.Fatalf("UserBranches: %v", err)
	}
	if len(branches) != 1 || branches[0].Name != "Casa Central" {
		t.Fatalf("unexpected branches: %v", branches)
	}
}
