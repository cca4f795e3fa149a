// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/nephroline/aftercare/internal/domain"
)

// ErrNotFound is returned when a patient lookup matches no record.
var ErrNotFound = errors.New("patient not found")

// ClinicStats summarizes the patient directory for the stats endpoint.
type ClinicStats struct {
	TotalPatients int              `json:"total_patients"`
	AverageAge    float64          `json:"average_age"`
	MaleCount     int              `json:"male_count"`
	FemaleCount   int              `json:"female_count"`
	TopDiagnoses  []DiagnosisCount `json:"top_diagnoses"`
}

// DiagnosisCount is one entry of the diagnosis frequency table.
type DiagnosisCount struct {
	Diagnosis string `json:"diagnosis"`
	Count     int    `json:"count"`
}

// Repository defines the interface for the patient directory.
type Repository interface {
	// FindPatients resolves free text to zero, one or many records. Input
	// that looks like a patient ID is matched exactly against patient_id;
	// anything else is a case-insensitive substring match on name.
	FindPatients(ctx context.Context, nameOrID string) ([]domain.PatientRecord, error)

	// GetPatient retrieves a single record by patient ID.
	// Returns ErrNotFound when no record matches.
	GetPatient(ctx context.Context, patientID string) (*domain.PatientRecord, error)

	// SearchPatients matches name, diagnosis or symptoms by substring.
	SearchPatients(ctx context.Context, query string) ([]domain.PatientRecord, error)

	// InsertPatient adds a record. Used by the seeder only; conversation
	// turns never write patient data.
	InsertPatient(ctx context.Context, p *domain.PatientRecord) error

	// CountPatients returns the number of records in the directory.
	CountPatients(ctx context.Context) (int, error)

	// Stats aggregates directory-wide statistics.
	Stats(ctx context.Context) (*ClinicStats, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
