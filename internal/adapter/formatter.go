package adapter

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/kapu/attendee-profile-web/internal/domain"
	"github.com/kapu/attendee-profile-web/internal/i18n"
)

// displayRule turns a raw field value into a link target and display text.
type displayRule struct {
	link func(value string) string
	text func(value, network string) string
}

func identity(value string) string { return value }

func stripNetworkPrefix(value, network string) string {
	if prefix, ok := networkPrefixes[network]; ok {
		return strings.Replace(value, prefix, "", 1)
	}
	return value
}

func plainText(value, _ string) string { return value }

// networkPrefixes lists URL prefixes hidden from the displayed text.
var networkPrefixes = map[string]string{
	domain.NetworkLinkedIn: constants.SocialConfig.LinkedInPrefix,
}

var displayRules = map[domain.FieldKind]displayRule{
	domain.FieldKindEmail: {
		link: func(v string) string { return "mailto:" + v },
		text: plainText,
	},
	domain.FieldKindPhone: {
		link: func(v string) string { return "tel:" + v },
		text: plainText,
	},
	domain.FieldKindSocialLink: {
		link: identity,
		text: stripNetworkPrefix,
	},
	domain.FieldKindGeneric: {
		link: identity,
		text: plainText,
	},
}

// DisplayField is one rendered profile row.
type DisplayField struct {
	Kind              domain.FieldKind
	Icon              string
	Label             string
	Href              string
	Text              string
	Placeholder       bool
	PlaceholderWidth  int
	PlaceholderHeight int
}

// SafeHref returns the link for templates. tel: links are built here from a
// fixed scheme, so they are marked safe; everything else goes through
// html/template's URL filter.
func (f DisplayField) SafeHref() any {
	if f.Kind == domain.FieldKindPhone && strings.HasPrefix(f.Href, "tel:") {
		return template.URL(f.Href)
	}
	return f.Href
}

// FormatField applies the display rule for the field's kind.
func FormatField(field domain.ProfileField) (href, text string) {
	rule, ok := displayRules[field.Kind]
	if !ok {
		rule = displayRules[domain.FieldKindGeneric]
	}
	return rule.link(field.Value), rule.text(field.Value, field.Network)
}

// Notice is the dismissible message shown above the page (toast equivalent).
type Notice struct {
	Title   string
	Message string
	Status  string // error|info
}

// PageView is the data behind the profile page template.
type PageView struct {
	Lang          string
	ShortID       string
	HasProfile    bool
	FullName      string
	Role          string
	Fields        []DisplayField
	Loading       bool
	PinDialogOpen bool
	Pin           string
	PinLength     int
	Notice        *Notice
	SubmitURL     string
	DownloadURL   string

	localizer *i18n.Localizer
}

// T translates a catalog key for the page language.
func (p PageView) T(key string) string {
	if p.localizer == nil {
		return key
	}
	return p.localizer.T(key)
}

// ProfileFormatter builds page views from session state.
type ProfileFormatter struct {
	submitPath   string
	downloadPath string
}

// NewProfileFormatter creates a formatter whose forms post to submitPath and
// whose download button points at downloadPath.
func NewProfileFormatter(submitPath, downloadPath string) *ProfileFormatter {
	return &ProfileFormatter{
		submitPath:   submitPath,
		downloadPath: downloadPath,
	}
}

// BuildPage maps a SessionState to the page view.
func (f *ProfileFormatter) BuildPage(state domain.SessionState, notice *Notice, loc *i18n.Localizer) PageView {
	page := PageView{
		ShortID:       state.ShortID,
		HasProfile:    state.HasProfile(),
		Loading:       state.Loading,
		PinDialogOpen: state.PinDialogOpen,
		Pin:           state.Pin,
		PinLength:     constants.PinConfig.Length,
		Notice:        notice,
		SubmitURL:     f.submitPath,
		localizer:     loc,
	}
	if loc != nil {
		page.Lang = loc.Lang()
	}

	if !state.HasProfile() {
		return page
	}

	page.FullName = state.Profile.FullName()
	page.Role = state.Profile.Role
	page.DownloadURL = f.downloadPath + "?" + url.Values{"short_id": {state.ShortID}}.Encode()

	fields := state.Profile.Fields()
	page.Fields = make([]DisplayField, 0, len(fields))
	for _, field := range fields {
		page.Fields = append(page.Fields, f.FormatDisplayField(field, state.Loading, loc))
	}
	return page
}

// FormatDisplayField renders one field, or a fixed-size placeholder while loading.
func (f *ProfileFormatter) FormatDisplayField(field domain.ProfileField, loading bool, loc *i18n.Localizer) DisplayField {
	label := field.Label
	if field.LabelKey != "" && loc != nil {
		label = loc.T(field.LabelKey)
	}

	display := DisplayField{
		Kind:  field.Kind,
		Icon:  iconFor(field),
		Label: label,
	}

	if loading {
		display.Placeholder = true
		display.PlaceholderWidth = constants.PlaceholderSize.Width
		display.PlaceholderHeight = constants.PlaceholderSize.Height
		return display
	}

	display.Href, display.Text = FormatField(field)
	return display
}

func iconFor(field domain.ProfileField) string {
	switch field.Kind {
	case domain.FieldKindEmail:
		return "mail"
	case domain.FieldKindPhone:
		return "phone"
	case domain.FieldKindSocialLink:
		if field.Network == domain.NetworkLinkedIn {
			return "linkedin"
		}
		return "globe"
	default:
		return "briefcase"
	}
}
