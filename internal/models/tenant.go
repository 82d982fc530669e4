package models

import "time"

// Tenant represents a household member. The roster service owns these
// records; the reconciliation engine only reads them.
type Tenant struct {
	// ID is the unique identifier for the tenant. Its fragments double as
	// the discriminating part of payment reference codes, so it must be
	// long enough that an 8+ character substring is effectively unique.
	ID string

	// Name is the tenant's full name as registered.
	Name string

	// Phone is the tenant's phone number in E.164 format (+46...).
	Phone string

	// StartDate is the move-in date, when known.
	StartDate *time.Time

	// DepartureDate is the move-out date; nil while the tenancy is open.
	DepartureDate *time.Time

	// CreatedAt is the Unix timestamp when the tenant was registered.
	CreatedAt int64
}

// FirstName returns the first whitespace-separated token of the name.
// Reference codes embed it for human readability.
func (t *Tenant) FirstName() string {
	for i, r := range t.Name {
		if r == ' ' {
			return t.Name[:i]
		}
	}
	return t.Name
}
