package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"visitprep/pkg"
)

// PatientRepository reads patient records from Postgres.  It never writes:
// records are loaded once at startup and served from memory.
type PatientRepository struct {
	DB *sql.DB
}

// NewPatientRepository wraps an open database handle.  The caller owns the
// connection lifecycle.
func NewPatientRepository(db *sql.DB) *PatientRepository { return &PatientRepository{DB: db} }

const listPatientsSQL = `SELECT p.id, p.name, p.age, p.gender, p.summary, p.conditions, p.prescriptions, p.patient_input,
       s.specialty, s.facility, s.visit_date, s.summary, s.cardiac_summary
  FROM patients p
  LEFT JOIN specialist_visits s ON s.patient_id = p.id
 ORDER BY p.name`

const listLabsSQL = `SELECT patient_id, name, value_text, value_num
  FROM patient_labs
 ORDER BY patient_id, position`

// ListPatients loads every patient with labs in their stored order.  A
// numeric lab that also has value_text is shown with that text.
func (r *PatientRepository) ListPatients(ctx context.Context) ([]pkg.PatientRecord, error) {
	rows, err := r.DB.QueryContext(ctx, listPatientsSQL)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var (
		out   []pkg.PatientRecord
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			rec                                   pkg.PatientRecord
			input                                 sql.NullString
			specialty, facility, date, sum, cardi sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Age, &rec.Gender, &rec.Summary,
			pq.Array(&rec.Conditions), pq.Array(&rec.Prescriptions), &input,
			&specialty, &facility, &date, &sum, &cardi,
		); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		rec.PatientInput = input.String
		if specialty.Valid {
			rec.SpecialistVisit = &pkg.SpecialistVisit{
				Specialty:      specialty.String,
				Facility:       facility.String,
				Date:           date.String,
				Summary:        sum.String,
				CardiacSummary: cardi.String,
			}
		}
		index[rec.ID] = len(out)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachLabs(ctx, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PatientRepository) attachLabs(ctx context.Context, recs []pkg.PatientRecord, index map[string]int) error {
	rows, err := r.DB.QueryContext(ctx, listLabsSQL)
	if err != nil {
		return fmt.Errorf("query labs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			patientID, name string
			text            sql.NullString
			num             sql.NullFloat64
		)
		if err := rows.Scan(&patientID, &name, &text, &num); err != nil {
			return fmt.Errorf("scan lab: %w", err)
		}
		i, ok := index[patientID]
		if !ok {
			continue
		}
		lab := pkg.Lab{Name: name, Value: text.String}
		switch {
		case num.Valid && text.Valid:
			lab.Value = json.Number(text.String)
		case num.Valid:
			lab.Value = num.Float64
		}
		recs[i].Labs = append(recs[i].Labs, lab)
	}
	return rows.Err()
}
