package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
	"github.com/johnquangdev/clinic-assistant/internal/domain/repositories"
)

// PatientRepository handles patient data operations
type PatientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create creates a new patient
func (r *PatientRepository) Create(ctx context.Context, patient *entities.Patient) error {
	if patient == nil {
		return errors.New("patient cannot be nil")
	}
	return r.db.WithContext(ctx).Create(patient).Error
}

// FindByID retrieves a patient by ID
func (r *PatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Patient, error) {
	var patient entities.Patient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrPatientNotFound
		}
		return nil, err
	}
	return &patient, nil
}

// List retrieves patients with optional name/phone search and pagination
func (r *PatientRepository) List(ctx context.Context, filters repositories.PatientFilters) ([]entities.Patient, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Patient{})
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("full_name ILIKE ? OR phone ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var patients []entities.Patient
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filters.Offset).
		Find(&patients).Error; err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// Update updates a patient record
func (r *PatientRepository) Update(ctx context.Context, patient *entities.Patient) error {
	if patient == nil {
		return errors.New("patient cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.Patient{}).
		Where("id = ?", patient.ID).
		Save(patient).Error
}

// Delete removes a patient record
func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.Patient{}, id).Error
}
