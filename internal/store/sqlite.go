package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nephroline/aftercare/internal/domain"
	"github.com/nephroline/aftercare/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed patient repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS patients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		gender TEXT NOT NULL,
		diagnosis TEXT NOT NULL,
		symptoms TEXT NOT NULL,
		lab_results TEXT NOT NULL,
		treatment_plan TEXT NOT NULL,
		medications TEXT NOT NULL,
		date_admitted TEXT NOT NULL,
		doctor_notes TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_patients_name ON patients(name);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const patientColumns = `patient_id, name, age, gender, diagnosis, symptoms,
	lab_results, treatment_plan, medications, date_admitted, doctor_notes, created_at`

func scanPatient(row interface{ Scan(dest ...any) error }) (*domain.PatientRecord, error) {
	var p domain.PatientRecord
	var createdAt int64
	err := row.Scan(
		&p.PatientID, &p.Name, &p.Age, &p.Gender, &p.Diagnosis, &p.Symptoms,
		&p.LabResults, &p.TreatmentPlan, &p.Medications, &p.DateAdmitted,
		&p.DoctorNotes, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdAt, 0)
	return &p, nil
}

func (s *SQLiteStore) queryPatients(ctx context.Context, query string, args ...any) ([]domain.PatientRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close patient rows", "error", closeErr)
		}
	}()

	var patients []domain.PatientRecord
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient row: %w", err)
		}
		patients = append(patients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return patients, nil
}

// FindPatients resolves free text to zero, one or many records.
func (s *SQLiteStore) FindPatients(ctx context.Context, nameOrID string) ([]domain.PatientRecord, error) {
	trimmed := strings.TrimSpace(nameOrID)

	var query string
	var arg any
	if domain.IsPatientID(strings.ToUpper(trimmed)) {
		query = `SELECT ` + patientColumns + `
			FROM patients WHERE UPPER(patient_id) = UPPER(?) ORDER BY name`
		arg = trimmed
	} else {
		query = `SELECT ` + patientColumns + `
			FROM patients WHERE LOWER(name) LIKE LOWER(?) ORDER BY name`
		arg = "%" + trimmed + "%"
	}

	patients, err := s.queryPatients(ctx, query, arg)
	if shared.IsSQLiteConflictError(err) {
		// One retry on a busy database; the seeder may be writing.
		patients, err = s.queryPatients(ctx, query, arg)
	}
	return patients, err
}

// GetPatient retrieves a single record by patient ID.
func (s *SQLiteStore) GetPatient(ctx context.Context, patientID string) (*domain.PatientRecord, error) {
	query := `SELECT ` + patientColumns + `
		FROM patients WHERE UPPER(patient_id) = UPPER(?)`

	row := s.db.QueryRowContext(ctx, query, strings.TrimSpace(patientID))
	p, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	return p, nil
}

// SearchPatients matches name, diagnosis or symptoms by substring.
func (s *SQLiteStore) SearchPatients(ctx context.Context, query string) ([]domain.PatientRecord, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	q := `SELECT ` + patientColumns + `
		FROM patients
		WHERE name LIKE ? OR diagnosis LIKE ? OR symptoms LIKE ?
		ORDER BY name`
	return s.queryPatients(ctx, q, like, like, like)
}

// InsertPatient adds a record to the directory.
func (s *SQLiteStore) InsertPatient(ctx context.Context, p *domain.PatientRecord) error {
	query := `
	INSERT INTO patients (patient_id, name, age, gender, diagnosis, symptoms,
		lab_results, treatment_plan, medications, date_admitted, doctor_notes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		p.PatientID, p.Name, p.Age, p.Gender, p.Diagnosis, p.Symptoms,
		p.LabResults, p.TreatmentPlan, p.Medications, p.DateAdmitted,
		p.DoctorNotes, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

// CountPatients returns the number of records in the directory.
func (s *SQLiteStore) CountPatients(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return count, nil
}

// Stats aggregates directory-wide statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*ClinicStats, error) {
	stats := &ClinicStats{}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(age), 0),
		       COALESCE(SUM(CASE WHEN gender = 'Male' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN gender = 'Female' THEN 1 ELSE 0 END), 0)
		FROM patients`)
	if err := row.Scan(&stats.TotalPatients, &stats.AverageAge, &stats.MaleCount, &stats.FemaleCount); err != nil {
		return nil, fmt.Errorf("aggregate patients: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT diagnosis, COUNT(*) AS n
		FROM patients
		GROUP BY diagnosis
		ORDER BY n DESC, diagnosis
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("query top diagnoses: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close diagnosis rows", "error", closeErr)
		}
	}()

	for rows.Next() {
		var dc DiagnosisCount
		if err := rows.Scan(&dc.Diagnosis, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan diagnosis row: %w", err)
		}
		stats.TopDiagnoses = append(stats.TopDiagnoses, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnoses: %w", err)
	}

	return stats, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
