package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySocialLink(t *testing.T) {
	cases := []struct {
		name        string
		wantKind    FieldKind
		wantNetwork string
	}{
		{"Email", FieldKindEmail, NetworkNone},
		{"Teléfono", FieldKindPhone, NetworkNone},
		{"LinkedIn", FieldKindSocialLink, NetworkLinkedIn},
		{"Twitter", FieldKindSocialLink, NetworkNone},
		{"", FieldKindSocialLink, NetworkNone},
		// only the exact names are special
		{"email", FieldKindSocialLink, NetworkNone},
		{"correo", FieldKindSocialLink, NetworkNone},
		{"telefono", FieldKindSocialLink, NetworkNone},
		{"Phone", FieldKindSocialLink, NetworkNone},
		{"tel", FieldKindSocialLink, NetworkNone},
		{" LinkedIn ", FieldKindSocialLink, NetworkNone},
		{"linkedin", FieldKindSocialLink, NetworkNone},
	}

	for _, tc := range cases {
		kind, network := ClassifySocialLink(tc.name)
		assert.Equal(t, tc.wantKind, kind, tc.name)
		assert.Equal(t, tc.wantNetwork, network, tc.name)
	}
}

func TestProfileFieldsOrder(t *testing.T) {
	profile := &Profile{
		Company: "Acme",
		Email:   "ana@acme.io",
		SocialLinks: []SocialLink{
			{Name: "Teléfono", URL: "+34600000000"},
			{Name: "LinkedIn", URL: "https://www.linkedin.com/in/ana"},
			{Name: "Web", URL: "https://ana.dev"},
		},
	}

	fields := profile.Fields()
	require.Len(t, fields, 5)

	assert.Equal(t, ProfileField{Kind: FieldKindGeneric, Label: "Company", LabelKey: "field.company", Value: "Acme"}, fields[0])
	assert.Equal(t, ProfileField{Kind: FieldKindEmail, Label: "Email", LabelKey: "field.email", Value: "ana@acme.io"}, fields[1])
	assert.Equal(t, FieldKindPhone, fields[2].Kind)
	assert.Equal(t, "Teléfono", fields[2].Label)
	assert.Equal(t, NetworkLinkedIn, fields[3].Network)
	assert.Equal(t, "https://ana.dev", fields[4].Value)
}

func TestProfileFieldsNil(t *testing.T) {
	var profile *Profile
	assert.Nil(t, profile.Fields())
	assert.Empty(t, profile.FullName())
}

func TestExportContactCard(t *testing.T) {
	vcard := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Ana García\r\nEND:VCARD\r\n"
	profile := &Profile{FirstName: "Ana", LastName: "García", VCard: vcard}

	card, ok := ExportContactCard(profile)

	require.True(t, ok)
	assert.Equal(t, "Ana_García.vcf", card.Filename)
	assert.Equal(t, "text/vcard", card.MIMEType)
	assert.Equal(t, []byte(vcard), card.Content)
}

func TestExportContactCardNothingToExport(t *testing.T) {
	_, ok := ExportContactCard(nil)
	assert.False(t, ok)

	_, ok = ExportContactCard(&Profile{FirstName: "Ana"})
	assert.False(t, ok)
}
