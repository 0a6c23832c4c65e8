package models

import (
	"time"

	"github.com/google/uuid"
)

type CompetitionStatus string

const (
	CompetitionStatusPending  CompetitionStatus = "PENDING"
	CompetitionStatusAccepted CompetitionStatus = "ACCEPTED"
	CompetitionStatusRejected CompetitionStatus = "REJECTED"
)

// IsModerationOutcome reports whether s is a status a moderator may assign.
func (s CompetitionStatus) IsModerationOutcome() bool {
	return s == CompetitionStatusAccepted || s == CompetitionStatusRejected
}

type Competition struct {
	BaseModel
	Title                 string            `json:"title" gorm:"type:varchar(255);not null"`
	ShortDescription      string            `json:"shortDescription" gorm:"type:text;not null;default:''"`
	FullDescription       string            `json:"fullDescription" gorm:"type:text;not null;default:''"`
	Organizer             string            `json:"organizer" gorm:"type:varchar(255);not null;default:''"`
	PosterURL             string            `json:"posterUrl" gorm:"type:text;not null"`
	RegistrationStartDate time.Time         `json:"registrationStartDate" gorm:"not null"`
	RegistrationEndDate   time.Time         `json:"registrationEndDate" gorm:"not null;index"`
	EventDate             *time.Time        `json:"eventDate,omitempty"`
	RegistrationLink      string            `json:"registrationLink" gorm:"type:text;not null;default:''"`
	ContactPerson         string            `json:"contactPerson" gorm:"type:varchar(255);not null;default:''"`
	RegistrationFee       *string           `json:"registrationFee,omitempty" gorm:"type:varchar(100)"`
	CategoryID            uuid.UUID         `json:"categoryId" gorm:"type:uuid;not null;index"`
	AuthorID              *uuid.UUID        `json:"authorId,omitempty" gorm:"type:uuid;index"`
	Status                CompetitionStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	IsArchived            bool              `json:"isArchived" gorm:"not null;default:false;index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:CASCADE"`
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Competition) TableName() string {
	return "competitions"
}

// IsPubliclyVisible is true for accepted, unarchived competitions whose
// registration is still open at now.
func (c *Competition) IsPubliclyVisible(now time.Time) bool {
	return c.Status == CompetitionStatusAccepted && !c.IsArchived && c.RegistrationEndDate.After(now)
}

// IsArchivedAt is true when the competition was archived by hand or its
// registration window has closed.
func (c *Competition) IsArchivedAt(now time.Time) bool {
	return c.IsArchived || !c.RegistrationEndDate.After(now)
}
