package domain

// FieldKind tags a profile field with the display rule it follows.
type FieldKind string

const (
	FieldKindGeneric    FieldKind = "generic"
	FieldKindEmail      FieldKind = "email"
	FieldKindPhone      FieldKind = "phone"
	FieldKindSocialLink FieldKind = "social_link"
)

// String implements Stringer interface
func (k FieldKind) String() string {
	return string(k)
}

// Social networks with special display handling.
const (
	NetworkNone     = ""
	NetworkLinkedIn = "linkedin"
)

// ProfileField is one labelled row of the profile card.
// LabelKey is set for fixed rows whose label comes from the message catalog;
// social links keep the API-provided Label.
type ProfileField struct {
	Kind     FieldKind
	Network  string
	Label    string
	LabelKey string
	Value    string
}

// ClassifySocialLink maps an API-provided link name to a field kind. Names are
// matched exactly; any other name keeps its value as a plain link. This is the
// only place where link names are compared.
func ClassifySocialLink(name string) (FieldKind, string) {
	switch name {
	case "Email":
		return FieldKindEmail, NetworkNone
	case "Teléfono":
		return FieldKindPhone, NetworkNone
	case "LinkedIn":
		return FieldKindSocialLink, NetworkLinkedIn
	default:
		return FieldKindSocialLink, NetworkNone
	}
}

// Fields lists the profile rows in display order: company, email, then social
// links in the order the API returned them.
func (p *Profile) Fields() []ProfileField {
	if p == nil {
		return nil
	}

	fields := make([]ProfileField, 0, 2+len(p.SocialLinks))
	fields = append(fields,
		ProfileField{Kind: FieldKindGeneric, Label: "Company", LabelKey: "field.company", Value: p.Company},
		ProfileField{Kind: FieldKindEmail, Label: "Email", LabelKey: "field.email", Value: p.Email},
	)

	for _, link := range p.SocialLinks {
		kind, network := ClassifySocialLink(link.Name)
		fields = append(fields, ProfileField{
			Kind:    kind,
			Network: network,
			Label:   link.Name,
			Value:   link.URL,
		})
	}

	return fields
}
