package patient

import "time"

// CreatePatientRequest represents the request to register a patient
type CreatePatientRequest struct {
	FullName       string     `json:"full_name" validate:"required,min=1,max=255"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         string     `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Phone          string     `json:"phone,omitempty" validate:"omitempty,min=8,max=20"`
	Address        string     `json:"address,omitempty"`
	MedicalHistory string     `json:"medical_history,omitempty"`
}

// UpdatePatientRequest represents the request to update a patient record
type UpdatePatientRequest struct {
	FullName       *string    `json:"full_name,omitempty" validate:"omitempty,min=1,max=255"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         *string    `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Phone          *string    `json:"phone,omitempty" validate:"omitempty,min=8,max=20"`
	Address        *string    `json:"address,omitempty"`
	MedicalHistory *string    `json:"medical_history,omitempty"`
}

// ListPatientsRequest represents query parameters for listing patients
type ListPatientsRequest struct {
	Search   string `query:"search"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}
