package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nephroline/aftercare/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()

	repo, err := NewSQLite(filepath.Join(t.TempDir(), "patients.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return repo
}

func seedPatients(t *testing.T, repo Repository, patients ...domain.PatientRecord) {
	t.Helper()
	for i := range patients {
		if err := repo.InsertPatient(context.Background(), &patients[i]); err != nil {
			t.Fatalf("InsertPatient(%s) failed: %v", patients[i].PatientID, err)
		}
	}
}

func TestFindPatientsByName(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	seedPatients(t, repo,
		domain.PatientRecord{
			PatientID: "NEP0001", Name: "Sarah Harris", Age: 54, Gender: "Female",
			Diagnosis: "Chronic Kidney Disease Stage 3",
			Symptoms:  "Fatigue, swelling in legs and ankles, decreased urine output",
			LabResults: "Creatinine: 2.1 mg/dL", TreatmentPlan: "Dietary sodium restriction",
			Medications: "Lisinopril 10mg daily, Furosemide 40mg daily",
			DateAdmitted: "2024-03-12", DoctorNotes: "Stable chronic condition.",
		},
		domain.PatientRecord{
			PatientID: "NEP0002", Name: "John Harris", Age: 61, Gender: "Male",
			Diagnosis: "Diabetic Nephropathy", Symptoms: "Foamy urine",
			LabResults: "eGFR 38", TreatmentPlan: "ACE inhibitor therapy",
			Medications: "Losartan 50mg daily", DateAdmitted: "2024-04-02",
			DoctorNotes: "Progressive disease noted.",
		},
	)

	// Unique match.
	got, err := repo.FindPatients(context.Background(), "Sarah Harris")
	if err != nil {
		t.Fatalf("FindPatients failed: %v", err)
	}
	if len(got) != 1 || got[0].PatientID != "NEP0001" {
		t.Fatalf("expected single NEP0001 match, got %v", got)
	}

	// Substring match on last name yields both.
	got, err = repo.FindPatients(context.Background(), "harris")
	if err != nil {
		t.Fatalf("FindPatients failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for 'harris', got %d", len(got))
	}

	// No match.
	got, err = repo.FindPatients(context.Background(), "Nobody Here")
	if err != nil {
		t.Fatalf("FindPatients failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestFindPatientsByID(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	seedPatients(t, repo, domain.PatientRecord{
		PatientID: "NEP0008", Name: "Maria Lopez", Age: 47, Gender: "Female",
		Diagnosis: "Nephrotic Syndrome", Symptoms: "Swelling around eyes",
		LabResults: "Albumin 2.8 g/dL", TreatmentPlan: "Immunosuppressive therapy",
		Medications: "Enalapril 5mg BID", DateAdmitted: "2024-05-20",
		DoctorNotes: "Good response to current treatment.",
	})

	// ID lookup is case-insensitive exact match.
	got, err := repo.FindPatients(context.Background(), "nep0008")
	if err != nil {
		t.Fatalf("FindPatients failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Maria Lopez" {
		t.Fatalf("expected Maria Lopez by ID, got %v", got)
	}
}

func TestGetPatientNotFound(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	_, err := repo.GetPatient(context.Background(), "NEP9999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchPatientsByCondition(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	seedPatients(t, repo,
		domain.PatientRecord{
			PatientID: "NEP0010", Name: "David Clark", Age: 58, Gender: "Male",
			Diagnosis: "Polycystic Kidney Disease", Symptoms: "Back pain, blood in urine",
			LabResults: "Cr 1.9", TreatmentPlan: "Blood pressure control",
			Medications: "Ramipril 2.5mg daily", DateAdmitted: "2024-01-08",
			DoctorNotes: "Complicated case.",
		},
		domain.PatientRecord{
			PatientID: "NEP0011", Name: "Emily White", Age: 35, Gender: "Female",
			Diagnosis: "IgA Nephropathy", Symptoms: "Foamy urine, high blood pressure",
			LabResults: "eGFR 72", TreatmentPlan: "Proteinuria reduction",
			Medications: "Telmisartan 40mg daily", DateAdmitted: "2024-02-14",
			DoctorNotes: "Patient education provided.",
		},
	)

	got, err := repo.SearchPatients(context.Background(), "Kidney")
	if err != nil {
		t.Fatalf("SearchPatients failed: %v", err)
	}
	if len(got) != 1 || got[0].PatientID != "NEP0010" {
		t.Fatalf("expected NEP0010 for diagnosis search, got %v", got)
	}

	got, err = repo.SearchPatients(context.Background(), "foamy")
	if err != nil {
		t.Fatalf("SearchPatients failed: %v", err)
	}
	if len(got) != 1 || got[0].PatientID != "NEP0011" {
		t.Fatalf("expected NEP0011 for symptom search, got %v", got)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	seedPatients(t, repo,
		domain.PatientRecord{
			PatientID: "NEP0020", Name: "A B", Age: 40, Gender: "Male",
			Diagnosis: "Kidney Stones", Symptoms: "s", LabResults: "l",
			TreatmentPlan: "t", Medications: "m", DateAdmitted: "2024-01-01",
			DoctorNotes: "n",
		},
		domain.PatientRecord{
			PatientID: "NEP0021", Name: "C D", Age: 60, Gender: "Female",
			Diagnosis: "Kidney Stones", Symptoms: "s", LabResults: "l",
			TreatmentPlan: "t", Medications: "m", DateAdmitted: "2024-01-02",
			DoctorNotes: "n",
		},
		domain.PatientRecord{
			PatientID: "NEP0022", Name: "E F", Age: 50, Gender: "Female",
			Diagnosis: "Lupus Nephritis", Symptoms: "s", LabResults: "l",
			TreatmentPlan: "t", Medications: "m", DateAdmitted: "2024-01-03",
			DoctorNotes: "n",
		},
	)

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalPatients != 3 {
		t.Errorf("TotalPatients = %d, want 3", stats.TotalPatients)
	}
	if stats.AverageAge != 50 {
		t.Errorf("AverageAge = %v, want 50", stats.AverageAge)
	}
	if stats.MaleCount != 1 || stats.FemaleCount != 2 {
		t.Errorf("gender counts = %d/%d, want 1/2", stats.MaleCount, stats.FemaleCount)
	}
	if len(stats.TopDiagnoses) == 0 || stats.TopDiagnoses[0].Diagnosis != "Kidney Stones" {
		t.Errorf("expected Kidney Stones as top diagnosis, got %v", stats.TopDiagnoses)
	}
}
