package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Reputation score bounds.
const (
	MinReputation = 0.0
	MaxReputation = 10.0
)

// ReputationBand is a coarse label derived from the reputation score.
type ReputationBand string

// Reputation bands, highest first.
const (
	ReputationExcellent ReputationBand = "excellent"
	ReputationGood      ReputationBand = "good"
	ReputationAverage   ReputationBand = "average"
	ReputationPoor      ReputationBand = "poor"
)

// Attributes holds the caller-supplied identity fields for enrollment.
// The identifier and timestamps are assigned by the record store.
type Attributes struct {
	FullName   string
	Phone      string
	Email      string
	Employer   string
	Position   string
	Reputation float64
	Notes      string
	ImageRef   string
}

// Validate checks required fields and bounds.
func (a *Attributes) Validate() error {
	if strings.TrimSpace(a.FullName) == "" {
		return errors.New("full_name is required")
	}
	if a.Reputation < MinReputation || a.Reputation > MaxReputation {
		return fmt.Errorf("reputation must be between %g and %g, got %g",
			MinReputation, MaxReputation, a.Reputation)
	}
	if a.ImageRef == "" {
		return errors.New("image reference is required")
	}
	return nil
}

// Identity is an enrolled person's attribute record. The identifier is
// immutable and assigned at creation by the record store.
type Identity struct {
	id        string
	attrs     Attributes
	createdAt int64 // unix milli
	updatedAt int64 // unix milli
}

// NewIdentity validates attributes and builds an identity without an
// identifier; the record store assigns one on create.
func NewIdentity(attrs Attributes) (Identity, error) {
	if err := attrs.Validate(); err != nil {
		return Identity{}, fmt.Errorf("invalid identity attributes: %w", err)
	}
	attrs.FullName = strings.TrimSpace(attrs.FullName)
	return Identity{attrs: attrs}, nil
}

// ReconstructIdentity rebuilds an identity from storage without validation.
func ReconstructIdentity(id string, attrs Attributes, createdAt, updatedAt int64) Identity {
	return Identity{id: id, attrs: attrs, createdAt: createdAt, updatedAt: updatedAt}
}

// ID returns the record identifier, empty until the store assigns one.
func (i Identity) ID() string { return i.id }

// FullName returns the person's name.
func (i Identity) FullName() string { return i.attrs.FullName }

// Phone returns the contact phone number.
func (i Identity) Phone() string { return i.attrs.Phone }

// Email returns the contact email.
func (i Identity) Email() string { return i.attrs.Email }

// Employer returns the affiliation.
func (i Identity) Employer() string { return i.attrs.Employer }

// Position returns the job title.
func (i Identity) Position() string { return i.attrs.Position }

// Reputation returns the bounded reputation score.
func (i Identity) Reputation() float64 { return i.attrs.Reputation }

// Notes returns the free-text notes.
func (i Identity) Notes() string { return i.attrs.Notes }

// ImageRef returns the reference to the enrollment photo.
func (i Identity) ImageRef() string { return i.attrs.ImageRef }

// CreatedAt returns the creation time in unix milliseconds.
func (i Identity) CreatedAt() int64 { return i.createdAt }

// UpdatedAt returns the last modification time in unix milliseconds.
func (i Identity) UpdatedAt() int64 { return i.updatedAt }

// Attributes returns a copy of the attribute fields.
func (i Identity) Attributes() Attributes { return i.attrs }

// ReputationBand maps the score to its coarse label.
func (i Identity) ReputationBand() ReputationBand {
	switch {
	case i.attrs.Reputation >= 8.0:
		return ReputationExcellent
	case i.attrs.Reputation >= 6.0:
		return ReputationGood
	case i.attrs.Reputation >= 4.0:
		return ReputationAverage
	default:
		return ReputationPoor
	}
}
