package model

import "strings"

// Normalized field keys shared by ingestion, scrapers, and the merger.
const (
	FieldSourceID  = "source_id"
	FieldFullName  = "full_name"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldCompany   = "company"
	FieldAddress   = "address"
	FieldCity      = "city"
	FieldState     = "state"
	FieldPhone     = "phone"
	FieldEmail     = "email"
)

// Lead is one input record to be verified. Leads are immutable for the
// duration of a run: scrapers read them, only the merger produces output.
type Lead struct {
	Index     int               `json:"index"`
	SourceID  string            `json:"source_id,omitempty"`
	FullName  string            `json:"full_name,omitempty"`
	FirstName string            `json:"first_name,omitempty"`
	LastName  string            `json:"last_name,omitempty"`
	Company   string            `json:"company,omitempty"`
	Address   string            `json:"address,omitempty"`
	City      string            `json:"city,omitempty"`
	State     string            `json:"state,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Email     string            `json:"email,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"` // unrecognized input columns
}

// Name returns the lead's display name: the full name when present,
// otherwise first and last joined.
func (l Lead) Name() string {
	if n := strings.TrimSpace(l.FullName); n != "" {
		return n
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{l.FirstName, l.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Location combines city, state, and any zip found in the metadata into a
// single query string ("Austin, TX 78701"). Empty when nothing is known.
func (l Lead) Location() string {
	city := strings.TrimSpace(l.City)
	state := strings.TrimSpace(l.State)

	cityState := city
	if city != "" && state != "" {
		cityState = city + ", " + state
	} else if state != "" {
		cityState = state
	}

	zip := strings.TrimSpace(l.Metadata["zip"])
	if zip == "" {
		zip = strings.TrimSpace(l.Metadata["postal_code"])
	}

	switch {
	case cityState != "" && zip != "":
		return cityState + " " + zip
	case zip != "":
		return zip
	default:
		return cityState
	}
}

// Field returns the lead's value for a normalized field key, falling back
// to the metadata map for anything unrecognized.
func (l Lead) Field(key string) string {
	switch key {
	case FieldSourceID:
		return l.SourceID
	case FieldFullName:
		return l.FullName
	case FieldFirstName:
		return l.FirstName
	case FieldLastName:
		return l.LastName
	case FieldCompany:
		return l.Company
	case FieldAddress:
		return l.Address
	case FieldCity:
		return l.City
	case FieldState:
		return l.State
	case FieldPhone:
		return l.Phone
	case FieldEmail:
		return l.Email
	default:
		return l.Metadata[key]
	}
}
