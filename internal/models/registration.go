package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	StatusSubmitted RegistrationStatus = "submitted"
	StatusValidated RegistrationStatus = "validated"
)

// Registration is one attendee submission. QRCodePath and TicketPath are set
// together with Validated and stay nil until then.
type Registration struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName      string     `gorm:"not null" json:"full_name"`
	SecondaryName *string    `json:"secondary_name,omitempty"`
	Phone         string     `gorm:"not null" json:"phone"`
	Email         string     `gorm:"not null" json:"email"`
	TicketType    TicketType `gorm:"type:varchar(32);not null" json:"ticket_type"`
	ProofPath     string     `gorm:"not null" json:"-"`
	Validated     bool       `gorm:"not null;default:false;index" json:"validated"`
	QRCodePath    *string    `json:"-"`
	TicketPath    *string    `json:"-"`
	ValidatedAt   *time.Time `json:"validated_at,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (registration *Registration) BeforeCreate(tx *gorm.DB) (err error) {
	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	return
}

func (registration *Registration) Status() RegistrationStatus {
	if registration.Validated {
		return StatusValidated
	}
	return StatusSubmitted
}

// HasArtifacts reports whether both ticket files are recorded.
func (registration *Registration) HasArtifacts() bool {
	return registration.QRCodePath != nil && registration.TicketPath != nil
}

// Clone returns a deep copy so callers never share pointer fields with a store.
func (registration *Registration) Clone() *Registration {
	clone := *registration
	clone.SecondaryName = cloneString(registration.SecondaryName)
	clone.QRCodePath = cloneString(registration.QRCodePath)
	clone.TicketPath = cloneString(registration.TicketPath)
	if registration.ValidatedAt != nil {
		validatedAt := *registration.ValidatedAt
		clone.ValidatedAt = &validatedAt
	}
	return &clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// RegistrationInput carries the attendee-supplied fields of a new registration.
type RegistrationInput struct {
	FullName      string     `json:"full_name" validate:"required,max=255"`
	SecondaryName string     `json:"secondary_name" validate:"max=255"`
	Phone         string     `json:"phone" validate:"required,max=32"`
	Email         string     `json:"email" validate:"required,email,max=255"`
	TicketType    TicketType `json:"ticket_type" validate:"required,ticket_type"`
	ProofPath     string     `json:"-" validate:"required"`
}

// RegistrationUpdate holds the admin-editable fields. Nil fields are left untouched;
// an empty SecondaryName clears it.
type RegistrationUpdate struct {
	FullName      *string     `json:"full_name" validate:"omitempty,min=1,max=255"`
	SecondaryName *string     `json:"secondary_name" validate:"omitempty,max=255"`
	Phone         *string     `json:"phone" validate:"omitempty,min=1,max=32"`
	Email         *string     `json:"email" validate:"omitempty,email,max=255"`
	TicketType    *TicketType `json:"ticket_type" validate:"omitempty,ticket_type"`
}

func (u RegistrationUpdate) Empty() bool {
	return u.FullName == nil && u.SecondaryName == nil && u.Phone == nil && u.Email == nil && u.TicketType == nil
}

// Apply copies the non-nil fields onto registration.
func (u RegistrationUpdate) Apply(registration *Registration) {
	if u.FullName != nil {
		registration.FullName = *u.FullName
	}
	if u.SecondaryName != nil {
		if *u.SecondaryName == "" {
			registration.SecondaryName = nil
		} else {
			registration.SecondaryName = cloneString(u.SecondaryName)
		}
	}
	if u.Phone != nil {
		registration.Phone = *u.Phone
	}
	if u.Email != nil {
		registration.Email = *u.Email
	}
	if u.TicketType != nil {
		registration.TicketType = *u.TicketType
	}
}

// Columns returns the column/value pairs an ORM update needs for the non-nil fields.
func (u RegistrationUpdate) Columns() map[string]interface{} {
	columns := map[string]interface{}{}
	if u.FullName != nil {
		columns["full_name"] = *u.FullName
	}
	if u.SecondaryName != nil {
		if *u.SecondaryName == "" {
			columns["secondary_name"] = nil
		} else {
			columns["secondary_name"] = *u.SecondaryName
		}
	}
	if u.Phone != nil {
		columns["phone"] = *u.Phone
	}
	if u.Email != nil {
		columns["email"] = *u.Email
	}
	if u.TicketType != nil {
		columns["ticket_type"] = string(*u.TicketType)
	}
	return columns
}
