package records

import "visitprep/pkg"

// Builtin returns the demo patients served when no other source is
// configured.
func Builtin() []pkg.PatientRecord {
	return []pkg.PatientRecord{
		{
			ID:     "ben-hackett",
			Name:   "Ben Hackett",
			Age:    45,
			Gender: "Male",
			Conditions: []string{
				"Type 2 Diabetes",
				"Hypertension",
				"Hyperlipidemia",
				"Obesity",
				"Chronic Kidney Disease (Stage 3)",
				"Sleep Apnea",
			},
			Labs: []pkg.Lab{
				{Name: "HbA1c", Value: 7.5},
				{Name: "Fasting Blood Glucose", Value: 140},
				{Name: "Total Cholesterol", Value: 220},
				{Name: "LDL", Value: 140},
				{Name: "HDL", Value: 40},
				{Name: "Triglycerides", Value: 180},
				{Name: "Blood Pressure", Value: "145/90"},
				{Name: "eGFR", Value: 50},
				{Name: "BMI", Value: 32},
				{Name: "Urine Albumin-to-Creatinine Ratio (UACR)", Value: 45},
			},
			Summary: "Ben Hackett is a 45-year-old male with a history of type 2 diabetes, hypertension, hyperlipidemia, obesity, " +
				"chronic kidney disease (stage 3), and sleep apnea. He has been managing his diabetes with metformin and lifestyle " +
				"modifications but has been struggling with maintaining good glycemic control. His blood pressure and lipid levels " +
				"are also elevated, and his kidney function is impaired.",
		},
		{
			ID:     "margaret-ellis",
			Name:   "Margaret Ellis",
			Age:    68,
			Gender: "Female",
			Conditions: []string{
				"Heart Failure with Reduced Ejection Fraction",
				"Atrial Fibrillation",
				"Hypertension",
				"Osteoarthritis",
			},
			Labs: []pkg.Lab{
				{Name: "NT-proBNP", Value: 1850},
				{Name: "Sodium", Value: 134},
				{Name: "Potassium", Value: 5.1},
				{Name: "Creatinine", Value: 1.3},
				{Name: "INR", Value: "n/a (on apixaban)"},
				{Name: "Blood Pressure", Value: "118/72"},
			},
			Summary: "Margaret Ellis is a 68-year-old female with heart failure and atrial fibrillation. She reports increased " +
				"shortness of breath on exertion over the past month and mild ankle swelling.",
			SpecialistVisit: &pkg.SpecialistVisit{
				Specialty:      "Cardiology",
				Facility:       "St. Luke's Heart Institute",
				Date:           "2023-04-11",
				Summary:        "Seen for worsening exertional dyspnea. Diuretic dose increased, follow-up echo ordered.",
				CardiacSummary: "LVEF 30%, moderate mitral regurgitation, rate-controlled atrial fibrillation.",
			},
			Prescriptions: []string{
				"Sacubitril/valsartan 49/51 mg twice daily",
				"Metoprolol succinate 100 mg daily",
				"Furosemide 40 mg daily",
				"Apixaban 5 mg twice daily",
			},
		},
		{
			ID:     "samuel-ortiz",
			Name:   "Samuel Ortiz",
			Age:    57,
			Gender: "Male",
			Conditions: []string{
				"COPD (GOLD 2)",
				"Type 2 Diabetes",
				"Depression",
			},
			Labs: []pkg.Lab{
				{Name: "HbA1c", Value: 8.2},
				{Name: "FEV1 (% predicted)", Value: 62},
				{Name: "SpO2 at rest", Value: "93%"},
				{Name: "PHQ-9", Value: 14},
			},
			Summary: "Samuel Ortiz is a 57-year-old male smoker with COPD and poorly controlled diabetes. He missed his last " +
				"two appointments and reports low mood.",
			PatientInput: "I've been too tired to check my sugars and I'm still smoking about half a pack a day. " +
				"I want help quitting but the patches gave me a rash.",
			Prescriptions: []string{
				"Tiotropium 18 mcg inhaled daily",
				"Metformin 1000 mg twice daily",
				"Sertraline 50 mg daily",
			},
		},
	}
}
