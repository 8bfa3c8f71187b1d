package app

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/avoronov/bankadmin/internal/config"
)

func testConfig(t *testing.T) *config.Options {
	t.Helper()
	return &config.Options{
		SecretKey:       "test-secret",
		Address:         "localhost:0",
		InstanceDir:     t.TempDir(),
		TemplateDir:     "../../web/templates",
		SessionLifetime: 30 * time.Minute,
		CookieHTTPOnly:  true,
	}
}

func expectSchema(mock sqlmock.Sqlmock) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func adminColumns() []string {
	return []string{"id", "username", "email", "password_hash", "created_at"}
}

func TestNewSeedsDefaultAdmin(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New returned error: %v", err)
	}
	defer database.Close()

	expectSchema(mock)
	mock.ExpectQuery("SELECT id, username, email, password_hash, created_at").
		WithArgs("admin").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO admins").
		WithArgs("admin", "admin@banking.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	a, err := New(testConfig(t), database, zap.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if a.Handler == nil {
		t.Fatal("expected a non-nil handler")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNewSkipsSeedWhenAdminExists(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New returned error: %v", err)
	}
	defer database.Close()

	expectSchema(mock)
	mock.ExpectQuery("SELECT id, username, email, password_hash, created_at").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows(adminColumns()).
			AddRow(int64(1), "admin", "admin@banking.com", []byte("hash"), time.Now()))

	if _, err := New(testConfig(t), database, zap.NewNop()); err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNewFailsWhenSchemaCannotBeCreated(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New returned error: %v", err)
	}
	defer database.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnError(errors.New("permission denied"))

	if _, err := New(testConfig(t), database, zap.NewNop()); err == nil {
		t.Fatal("expected an error when the schema cannot be created")
	}
}

func TestNewFailsWhenSeedLookupFails(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New returned error: %v", err)
	}
	defer database.Close()

	expectSchema(mock)
	mock.ExpectQuery("SELECT id, username, email, password_hash, created_at").
		WithArgs("admin").
		WillReturnError(errors.New("connection reset"))

	if _, err := New(testConfig(t), database, zap.NewNop()); err == nil {
		t.Fatal("expected an error when the admin lookup fails")
	}
}
