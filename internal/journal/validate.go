package journal

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mithrel/quire/pkg/api"
)

const (
	MaxTitleLen   = 120
	MaxContentLen = 50000
)

// fields is the validated shape shared by create and both update modes.
// A nil field is absent.
type fields struct {
	Title     *string `json:"title"`
	ContentMD *string `json:"content_md"`
}

// validate checks every present field against its bounds. With requireAll
// an absent field is itself a violation.
func (f fields) validate(requireAll bool) error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, bounded(requireAll || f.Title != nil, MaxTitleLen)...),
		validation.Field(&f.ContentMD, bounded(requireAll || f.ContentMD != nil, MaxContentLen)...),
	)
	return asValidation(err)
}

func bounded(check bool, max int) []validation.Rule {
	if !check {
		return nil
	}
	return []validation.Rule{validation.Required, validation.RuneLength(1, max)}
}

func validatePage(p api.Page) error {
	err := validation.Errors{
		"limit":  validation.Validate(p.Limit, validation.Min(0)),
		"offset": validation.Validate(p.Offset, validation.Min(0)),
	}.Filter()
	return asValidation(err)
}
