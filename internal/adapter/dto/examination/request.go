package examination

// StartSessionRequest represents the request to open an examination session
type StartSessionRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
	BookingID string `json:"booking_id,omitempty" validate:"omitempty,uuid"`
	Complaint string `json:"complaint,omitempty" validate:"omitempty,max=2000"`
}

// AnalyzeRequest represents the request to run the note pipeline over a
// manually entered transcript. Recording uploads go through the multipart
// endpoint instead.
type AnalyzeRequest struct {
	Transcript string `json:"transcript" validate:"required,min=10"`
}

// SaveNoteRequest represents the clinician saving their own SOAP note
type SaveNoteRequest struct {
	Subjective string   `json:"subjective,omitempty"`
	Objective  string   `json:"objective,omitempty"`
	Assessment string   `json:"assessment,omitempty"`
	Plan       string   `json:"plan,omitempty"`
	Codes      []string `json:"codes,omitempty" validate:"omitempty,dive,icd10"`
}
