package pkg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// PatientRecord is the structured medical record shown to the physician and
// rendered into the plan prompt.  Records are loaded once at startup and never
// mutated afterwards.
type PatientRecord struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Age             int              `json:"age" yaml:"age"`
	Gender          string           `json:"gender" yaml:"gender"`
	Summary         string           `json:"summary" yaml:"summary"`
	Conditions      []string         `json:"conditions" yaml:"conditions"`
	Labs            []Lab            `json:"labs" yaml:"-"`
	SpecialistVisit *SpecialistVisit `json:"specialist_visit,omitempty" yaml:"specialist_visit,omitempty"`
	PatientInput    string           `json:"patient_input,omitempty" yaml:"patient_input,omitempty"`
	Prescriptions   []string         `json:"prescriptions,omitempty" yaml:"prescriptions,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate a shared record.
func (r PatientRecord) Clone() PatientRecord {
	out := r
	out.Conditions = append([]string(nil), r.Conditions...)
	out.Labs = append([]Lab(nil), r.Labs...)
	out.Prescriptions = append([]string(nil), r.Prescriptions...)
	if r.SpecialistVisit != nil {
		sv := *r.SpecialistVisit
		out.SpecialistVisit = &sv
	}
	return out
}

// Preview returns the short form used in patient listings.
func (r PatientRecord) Preview() PatientPreview {
	return PatientPreview{
		ID:         r.ID,
		Name:       r.Name,
		Age:        r.Age,
		Gender:     r.Gender,
		Conditions: len(r.Conditions),
	}
}

// Lab is a single lab result.  Value is either a string ("145/90") or a
// number; units are not validated.  A json.Number keeps the digits as they
// were written in the source.
type Lab struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// FormatValue renders the lab value the way it appears in prompts and on the
// dashboard.  Whole numbers lose their trailing ".0".
func (l Lab) FormatValue() string {
	switch v := l.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// SpecialistVisit is the optional summary of the most recent specialist
// consultation.
type SpecialistVisit struct {
	Specialty      string `json:"specialty" yaml:"specialty"`
	Facility       string `json:"facility" yaml:"facility"`
	Date           string `json:"date" yaml:"date"`
	Summary        string `json:"summary" yaml:"summary"`
	CardiacSummary string `json:"cardiac_summary" yaml:"cardiac_summary"`
}

// PatientPreview is returned in the patient list.
type PatientPreview struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Conditions int    `json:"condition_count"`
}

// FollowUp is a doctor's question about the generated plan together with the
// model's answer.
type FollowUp struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}
