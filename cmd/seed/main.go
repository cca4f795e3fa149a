// Seeds the patient directory with synthetic discharge records.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nephroline/aftercare/internal/config"
	"github.com/nephroline/aftercare/internal/domain"
	"github.com/nephroline/aftercare/internal/store"
)

var firstNames = []string{
	"John", "Jane", "Michael", "Sarah", "David", "Emily", "Robert", "Lisa",
	"James", "Maria", "William", "Jennifer", "Richard", "Patricia", "Charles",
	"Linda", "Joseph", "Barbara", "Thomas", "Elizabeth", "Christopher", "Susan",
	"Daniel", "Jessica", "Matthew", "Karen", "Anthony", "Nancy", "Mark", "Betty",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
}

var diagnoses = []string{
	"Chronic Kidney Disease Stage 3",
	"Acute Kidney Injury",
	"Diabetic Nephropathy",
	"Hypertensive Nephrosclerosis",
	"Glomerulonephritis",
	"Polycystic Kidney Disease",
	"Nephrotic Syndrome",
	"Kidney Stones",
	"Chronic Kidney Disease Stage 4",
	"End-Stage Renal Disease",
	"Acute Glomerulonephritis",
	"Lupus Nephritis",
	"IgA Nephropathy",
	"Minimal Change Disease",
	"Focal Segmental Glomerulosclerosis",
}

var symptomSets = []string{
	"Fatigue, swelling in legs and ankles, decreased urine output",
	"Nausea, vomiting, loss of appetite, metallic taste",
	"Shortness of breath, chest pain, irregular heartbeat",
	"Back pain, blood in urine, frequent urination",
	"Foamy urine, protein in urine, high blood pressure",
	"Severe flank pain, nausea, vomiting, fever",
	"Swelling around eyes, weight gain, decreased urine",
	"Muscle cramps, weakness, bone pain, itching",
	"Headaches, blurred vision, dizziness",
	"Difficulty concentrating, sleep problems, restless legs",
}

var medicationSets = []string{
	"Lisinopril 10mg daily, Furosemide 40mg daily, Sodium bicarbonate 650mg BID",
	"Losartan 50mg daily, Amlodipine 5mg daily, Atorvastatin 20mg daily",
	"Enalapril 5mg BID, Metoprolol 25mg BID, Calcitriol 0.25mcg daily",
	"Valsartan 80mg daily, Hydrochlorothiazide 25mg daily, Allopurinol 100mg daily",
	"Ramipril 2.5mg daily, Carvedilol 6.25mg BID, Sevelamer 800mg TID",
	"Telmisartan 40mg daily, Indapamide 2.5mg daily, Cinacalcet 30mg daily",
}

var treatmentPlans = []string{
	"Dietary sodium restriction, regular nephrology follow-up, blood pressure monitoring",
	"Fluid restriction, phosphorus binders, vitamin D supplementation, dialysis preparation",
	"ACE inhibitor therapy, diabetes management, cardiovascular risk reduction",
	"Blood pressure control, proteinuria reduction, lifestyle modifications",
	"Immunosuppressive therapy, infection prevention, regular monitoring",
	"Conservative management, symptom control, patient education",
}

var doctorNotes = []string{
	"Patient presents with %s. Recommend close monitoring and medication adjustment. Follow-up in 4 weeks.",
	"Stable chronic condition. Continue current therapy. Patient education provided regarding diet and fluid intake.",
	"Acute presentation requiring immediate intervention. Started on appropriate therapy. Monitor closely.",
	"Progressive disease noted. Discussed treatment options including dialysis preparation. Social work consult.",
	"Good response to current treatment. Continue monitoring kidney function. Lifestyle counseling provided.",
	"Complicated case requiring multidisciplinary approach. Coordinated care with cardiology and endocrinology.",
}

// labResults renders a plausible renal panel for the diagnosis severity.
func labResults(rng *rand.Rand, diagnosis string) string {
	var cr float64
	var egfr, bun int
	switch {
	case strings.Contains(diagnosis, "Stage 3"):
		cr = 1.5 + rng.Float64()*0.9
		egfr = 30 + rng.Intn(30)
		bun = 25 + rng.Intn(21)
	case strings.Contains(diagnosis, "Stage 4"):
		cr = 2.5 + rng.Float64()*2.4
		egfr = 15 + rng.Intn(15)
		bun = 45 + rng.Intn(36)
	case strings.Contains(diagnosis, "End-Stage"):
		cr = 5.0 + rng.Float64()*7.0
		egfr = 5 + rng.Intn(10)
		bun = 80 + rng.Intn(71)
	case strings.Contains(diagnosis, "Acute"):
		cr = 2.0 + rng.Float64()*6.0
		egfr = 10 + rng.Intn(36)
		bun = 30 + rng.Intn(71)
	default:
		cr = 1.2 + rng.Float64()*1.8
		egfr = 25 + rng.Intn(51)
		bun = 20 + rng.Intn(41)
	}

	alb := 2.5 + rng.Float64()*2.0
	prot := []string{"Negative", "Trace", "1+", "2+", "3+"}[rng.Intn(5)]
	pcr := 0.1 + rng.Float64()*4.9

	switch rng.Intn(4) {
	case 0:
		return fmt.Sprintf("Creatinine: %.1f mg/dL, BUN: %d mg/dL, eGFR: %d mL/min/1.73m2, Proteinuria: %s", cr, bun, egfr, prot)
	case 1:
		return fmt.Sprintf("Serum Creatinine: %.1f mg/dL, Urea: %d mg/dL, GFR: %d, Albumin: %.1f g/dL", cr, bun, egfr, alb)
	case 2:
		return fmt.Sprintf("Kidney function: Cr %.1f, BUN %d, eGFR %d, Protein/Creatinine ratio: %.1f", cr, bun, egfr, pcr)
	default:
		return fmt.Sprintf("Renal panel: Creatinine %.1f mg/dL, BUN %d mg/dL, eGFR %d mL/min/1.73m2", cr, bun, egfr)
	}
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	count := flag.Int("count", 30, "number of synthetic patients to generate")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	existing, err := repo.CountPatients(context.Background())
	if err != nil {
		slog.Error("Failed to count patients", "error", err)
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	for i := 1; i <= *count; i++ {
		diagnosis := pick(rng, diagnoses)
		p := domain.PatientRecord{
			PatientID:     fmt.Sprintf("NEP%04d", existing+i),
			Name:          pick(rng, firstNames) + " " + pick(rng, lastNames),
			Age:           25 + rng.Intn(61),
			Gender:        []string{"Male", "Female"}[rng.Intn(2)],
			Diagnosis:     diagnosis,
			Symptoms:      pick(rng, symptomSets),
			LabResults:    labResults(rng, diagnosis),
			TreatmentPlan: pick(rng, treatmentPlans),
			Medications:   pick(rng, medicationSets),
			DateAdmitted:  time.Now().AddDate(0, 0, -(1 + rng.Intn(180))).Format("2006-01-02"),
			DoctorNotes:   doctorNote(rng, diagnosis),
		}

		if err := repo.InsertPatient(context.Background(), &p); err != nil {
			slog.Error("Failed to insert patient", "error", err, "patient_id", p.PatientID)
			os.Exit(1)
		}
		slog.Info("Added patient", "patient_id", p.PatientID, "name", p.Name, "diagnosis", p.Diagnosis)
	}

	total, err := repo.CountPatients(context.Background())
	if err != nil {
		slog.Error("Failed to count patients", "error", err)
		os.Exit(1)
	}
	slog.Info("Seeding complete", "generated", *count, "total_patients", total)
}

func doctorNote(rng *rand.Rand, diagnosis string) string {
	note := pick(rng, doctorNotes)
	if strings.Contains(note, "%s") {
		return fmt.Sprintf(note, strings.ToLower(diagnosis))
	}
	return note
}
