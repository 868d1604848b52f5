package appointments

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashContact(t *testing.T) {
	key := []byte("test-key")

	a := HashContact(key, "maria@example.com")
	b := HashContact(key, "maria@example.com")
	c := HashContact(key, "other@example.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotContains(t, a, "maria")
	assert.Len(t, a, 64)

	// A different key yields a different hash for the same contact.
	assert.NotEqual(t, a, HashContact([]byte("another-key"), "maria@example.com"))
}

func TestNewPostgresStoreRequiresHashKey(t *testing.T) {
	_, err := NewPostgresStore(nil, "")
	assert.Error(t, err)
}

func TestPostgresStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewPostgresStore(db, "test-key")
	require.NoError(t, err)

	when := time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC)
	wantHash := HashContact([]byte("test-key"), "maria@example.com")

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO appointments (id, patient_name, contact_hash, scheduled_at, created_at)`)).
		WithArgs(sqlmock.AnyArg(), "Maria Lopez", wantHash, when, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec, err := store.Save(context.Background(), "Maria Lopez", "maria@example.com", when)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, wantHash, rec.ContactHash)
	assert.Equal(t, when, rec.TimeUTC)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewPostgresStore(db, "test-key")
	require.NoError(t, err)

	when := time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC)
	created := time.Date(2026, time.February, 10, 14, 5, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "patient_name", "contact_hash", "scheduled_at", "created_at"}).
		AddRow("appt-1", "Maria Lopez", "abc123", when, created)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, patient_name, contact_hash, scheduled_at, created_at`)).
		WithArgs("appt-1").
		WillReturnRows(rows)

	rec, err := store.GetByID(context.Background(), "appt-1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez", rec.PatientName)
	assert.Equal(t, when, rec.TimeUTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, patient_name, contact_hash, scheduled_at, created_at`)).
		WithArgs("appt-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "patient_name", "contact_hash", "scheduled_at", "created_at"}))

	_, err = store.GetByID(context.Background(), "appt-missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store, err := NewMemoryStore("test-key")
	require.NoError(t, err)
	ctx := context.Background()

	when := time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC)
	rec, err := store.Save(ctx, "Maria Lopez", "maria@example.com", when)
	require.NoError(t, err)

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "Maria Lopez", got.PatientName)
	assert.NotContains(t, got.ContactHash, "maria")

	_, err = store.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
