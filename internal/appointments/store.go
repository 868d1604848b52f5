package appointments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports an unknown appointment id.
var ErrNotFound = errors.New("appointments: not found")

// Record is a persisted appointment. Contact details are stored only as a
// keyed hash, never in clear text.
type Record struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patient_name"`
	ContactHash string    `json:"contact_hash"`
	TimeUTC     time.Time `json:"time_utc"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists appointment records.
type Store interface {
	Save(ctx context.Context, patientName, contact string, timeUTC time.Time) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
}

// HashContact produces the hex HMAC-SHA256 of a contact address under the
// given key.
func HashContact(key []byte, contact string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(contact))
	return hex.EncodeToString(mac.Sum(nil))
}

// PostgresStore persists appointments in a single table:
//
//	CREATE TABLE appointments (
//	    id           UUID PRIMARY KEY,
//	    patient_name TEXT NOT NULL,
//	    contact_hash TEXT NOT NULL,
//	    scheduled_at TIMESTAMPTZ NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db      *sql.DB
	hashKey []byte
}

// NewPostgresStore requires a non-empty hash key so clear-text contact data
// can never reach the database.
func NewPostgresStore(db *sql.DB, hashKey string) (*PostgresStore, error) {
	if hashKey == "" {
		return nil, fmt.Errorf("appointments: hash key is required")
	}
	return &PostgresStore{db: db, hashKey: []byte(hashKey)}, nil
}

func (s *PostgresStore) Save(ctx context.Context, patientName, contact string, timeUTC time.Time) (*Record, error) {
	rec := &Record{
		ID:          uuid.NewString(),
		PatientName: patientName,
		ContactHash: HashContact(s.hashKey, contact),
		TimeUTC:     timeUTC.UTC(),
		CreatedAt:   time.Now().UTC(),
	}

	const q = `INSERT INTO appointments (id, patient_name, contact_hash, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, q, rec.ID, rec.PatientName, rec.ContactHash, rec.TimeUTC, rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("appointments: save: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Record, error) {
	const q = `SELECT id, patient_name, contact_hash, scheduled_at, created_at
		FROM appointments WHERE id = $1`

	var rec Record
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.PatientName, &rec.ContactHash, &rec.TimeUTC, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	return &rec, nil
}

// MemoryStore is the fallback when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	hashKey []byte
	records map[string]*Record
}

func NewMemoryStore(hashKey string) (*MemoryStore, error) {
	if hashKey == "" {
		return nil, fmt.Errorf("appointments: hash key is required")
	}
	return &MemoryStore{
		hashKey: []byte(hashKey),
		records: make(map[string]*Record),
	}, nil
}

func (s *MemoryStore) Save(_ context.Context, patientName, contact string, timeUTC time.Time) (*Record, error) {
	rec := &Record{
		ID:          uuid.NewString(),
		PatientName: patientName,
		ContactHash: HashContact(s.hashKey, contact),
		TimeUTC:     timeUTC.UTC(),
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *rec
	s.records[rec.ID] = &stored
	return rec, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rec
	return &out, nil
}
