package core

// prompts.go holds the instruction text sent to the completion service.  The
// wording is kept stable so generated plans stay comparable between runs.

import (
	"strconv"
	"strings"

	"visitprep/pkg"
)

const (
	// PlanPreamble sets the model's role for plan generation.
	PlanPreamble = "You are a physician preparing for a patient visit. The patient has the following medical records:"

	// PlanInstruction limits the plan to three short bullets.
	PlanInstruction = "Based on this information, provide a concise bullet-point summary (no more than 3 bullet points) of the key points to discuss and potential treatment adjustments for the upcoming patient visit. Each bullet point should be around 25 words, with an absolute maximum of 50 words. Be as concise as possible."

	// FollowUpPreamble introduces the previously generated plan.
	FollowUpPreamble = "Based on the patient's medical records and the previously generated visit plan:"

	// FollowUpQuestionLead introduces the doctor's question.
	FollowUpQuestionLead = "The doctor has the following follow-up question:"

	// FollowUpInstruction asks for a short answer.
	FollowUpInstruction = "Please provide a concise response to the doctor's question, keeping it around 25 words if possible."
)

// BuildPlanPrompt renders the plan prompt for a patient record.  Sections
// appear in a fixed order; optional sections are omitted when empty.
func BuildPlanPrompt(rec pkg.PatientRecord) string {
	var b strings.Builder
	b.WriteString(PlanPreamble)
	b.WriteString("\n\n")

	line(&b, "Name: ", rec.Name)
	line(&b, "Age: ", strconv.Itoa(rec.Age))
	line(&b, "Gender: ", rec.Gender)
	line(&b, "Summary: ", rec.Summary)
	line(&b, "Conditions: ", strings.Join(rec.Conditions, ", "))

	b.WriteString("Labs:\n")
	for _, lab := range rec.Labs {
		line(&b, "- ", lab.Name+": "+lab.FormatValue())
	}

	if sv := rec.SpecialistVisit; sv != nil {
		b.WriteString("Specialist Visit:\n")
		line(&b, "- Specialty: ", sv.Specialty)
		line(&b, "- Facility: ", sv.Facility)
		line(&b, "- Date: ", sv.Date)
		line(&b, "- Summary: ", sv.Summary)
		line(&b, "- Cardiac Summary: ", sv.CardiacSummary)
	}

	if len(rec.Prescriptions) > 0 {
		b.WriteString("Prescriptions:\n")
		for _, p := range rec.Prescriptions {
			line(&b, "- ", p)
		}
	}

	if strings.TrimSpace(rec.PatientInput) != "" {
		line(&b, "Patient Input: ", rec.PatientInput)
	}

	b.WriteString("\n")
	b.WriteString(PlanInstruction)
	return b.String()
}

// BuildFollowUpPrompt renders the prompt for a follow-up question.  Both the
// plan and the question are embedded verbatim.
func BuildFollowUpPrompt(plan, question string) string {
	var b strings.Builder
	b.WriteString(FollowUpPreamble)
	b.WriteString("\n\n")
	b.WriteString(plan)
	b.WriteString("\n\n")
	b.WriteString(FollowUpQuestionLead)
	b.WriteString("\n")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(FollowUpInstruction)
	return b.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(value)
	b.WriteString("\n")
}
