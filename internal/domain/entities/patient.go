package entities

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the master record for a clinic patient
type Patient struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FullName       string     `json:"full_name" gorm:"type:varchar(255);not null"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty" gorm:"type:date"`
	Gender         string     `json:"gender,omitempty" gorm:"type:varchar(10)"`
	Phone          string     `json:"phone,omitempty" gorm:"type:varchar(20);index"`
	Address        string     `json:"address,omitempty" gorm:"type:text"`
	MedicalHistory string     `json:"medical_history,omitempty" gorm:"type:text"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Patient) TableName() string {
	return "patients"
}

// NewPatient creates a new patient record
func NewPatient(fullName string) *Patient {
	return &Patient{
		ID:        uuid.New(),
		FullName:  fullName,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
