package domain

// Profile is the attendee record returned by the attendee API. It is read-only
// once received and is either absent (nil) or complete.
type Profile struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Role        string       `json:"role"`
	Company     string       `json:"company"`
	SocialLinks []SocialLink `json:"social_links"`
	VCard       string       `json:"vcard"`
	Email       string       `json:"email"`
}

// SocialLink represents a labelled link entry (e.g. LinkedIn, Teléfono).
type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FullName joins first and last name for headings.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	return p.FirstName + " " + p.LastName
}
