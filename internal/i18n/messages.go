package i18n

import (
	"embed"
	"encoding/json"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message codes used by the API layer.
const (
	MsgInvalidCredentials  = "auth.invalid.credentials"
	MsgUserByEmailNotFound = "auth.user.by.email.not.found"
)

//go:embed locales/*.json
var localeFS embed.FS

// Messages resolves message codes to localized text.
type Messages struct {
	bundle *goi18n.Bundle
}

// New loads the embedded locale bundles. English is the fallback language.
func New() (*Messages, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+entry.Name()); err != nil {
			return nil, err
		}
	}

	return &Messages{bundle: bundle}, nil
}

// Localize resolves a message code for the given Accept-Language header
// value, interpolating data into the message template. Unknown languages
// fall back to English; an unknown code resolves to the code itself so a
// missing translation never blanks an error response.
func (m *Messages) Localize(acceptLanguage, code string, data map[string]any) string {
	localizer := goi18n.NewLocalizer(m.bundle, acceptLanguage)
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    code,
		TemplateData: data,
	})
	if err != nil {
		return code
	}
	return msg
}
