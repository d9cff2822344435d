package domain

import "github.com/kapu/attendee-profile-web/internal/constants"

// ContactCard is a downloadable vCard file built from Profile.VCard.
type ContactCard struct {
	Filename string
	MIMEType string
	Content  []byte
}

// ExportContactCard returns the contact card for the profile. ok is false when
// there is nothing to export (no profile or empty vcard); callers treat that as
// a silent no-op.
func ExportContactCard(p *Profile) (card ContactCard, ok bool) {
	if p == nil || p.VCard == "" {
		return ContactCard{}, false
	}

	return ContactCard{
		Filename: p.FirstName + "_" + p.LastName + constants.ContactCardConfig.Extension,
		MIMEType: constants.ContactCardConfig.MIMEType,
		Content:  []byte(p.VCard),
	}, true
}
