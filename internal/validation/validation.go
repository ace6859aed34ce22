// Package validation checks the invitation data contract before it reaches
// storage.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	validatorengine "github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"

	"github.com/mmynk/weddingcard/internal/models"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid input")

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	// photoIDPattern matches storage identifiers such as "weddings/abc123.jpg".
	photoIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)
)

const (
	minSlugLen = 3
	maxSlugLen = 64
)

// FieldError describes one failing field.
type FieldError struct {
	Field   string
	Message string
}

// Error lists every failing field of a validated value.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalid) hold for *Error.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Has reports whether field is among the failures.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validator validates models with go-playground/validator and the
// domain-specific tags attendance, slug, photoref and contentkind.
type Validator struct {
	engine *validatorengine.Validate
	trans  ut.Translator
}

// New creates a Validator with English messages.
func New() *Validator {
	engine := validatorengine.New()

	// Report JSON names so messages match what clients sent.
	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	must(engine.RegisterValidation("attendance", func(fl validatorengine.FieldLevel) bool {
		return models.Attendance(fl.Field().String()).Valid()
	}))
	must(engine.RegisterValidation("slug", func(fl validatorengine.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	}))
	must(engine.RegisterValidation("photoref", func(fl validatorengine.FieldLevel) bool {
		return ValidPhotoRef(fl.Field().String())
	}))
	must(engine.RegisterValidation("contentkind", func(fl validatorengine.FieldLevel) bool {
		return models.ContentKind(fl.Field().String()).Valid()
	}))

	engine.RegisterStructValidation(invitationRules, models.Invitation{})
	engine.RegisterStructValidation(socialLinkRules, models.SocialLink{})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	must(entranslations.RegisterDefaultTranslations(engine, trans))
	registerMessage(engine, trans, "attendance", "{0} must be one of yes, no, maybe")
	registerMessage(engine, trans, "slug", "{0} must be 3-64 lowercase letters, digits or single hyphens, and not an invitation ID")
	registerMessage(engine, trans, "photoref", "{0} must be an http(s) URL or a storage identifier")
	registerMessage(engine, trans, "contentkind", "{0} must be one of plain, html, embed")
	registerMessage(engine, trans, "embedkind", "{0} must be embed content")
	registerMessage(engine, trans, "mapkind", "{0} must be plain or embed content")

	return &Validator{engine: engine, trans: trans}
}

// ValidSlug reports whether s is a well-formed custom slug. Slugs share the
// share-key namespace with invitation IDs, so anything that parses as a UUID
// is rejected.
func ValidSlug(s string) bool {
	if len(s) < minSlugLen || len(s) > maxSlugLen || !slugPattern.MatchString(s) {
		return false
	}
	_, err := uuid.Parse(s)
	return err != nil
}

// ValidPhotoRef reports whether s is an http(s) URL with a host or a bare
// storage identifier. The empty string is accepted; required-ness is a
// separate rule.
func ValidPhotoRef(s string) bool {
	if s == "" {
		return true
	}
	if !strings.Contains(s, ":") {
		return photoIDPattern.MatchString(s) && !strings.Contains(s, "..")
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Invitation validates an invitation. Optional fields are only checked when
// present.
func (v *Validator) Invitation(inv *models.Invitation) error {
	if inv == nil {
		return &Error{Fields: []FieldError{{Field: "invitation", Message: "invitation is required"}}}
	}
	return v.Struct(inv)
}

// Comment validates a guest comment.
func (v *Validator) Comment(c *models.Comment) error {
	if c == nil {
		return &Error{Fields: []FieldError{{Field: "comment", Message: "comment is required"}}}
	}
	return v.Struct(c)
}

// Gift validates a gift notice.
func (v *Validator) Gift(g *models.Gift) error {
	if g == nil {
		return &Error{Fields: []FieldError{{Field: "gift", Message: "gift is required"}}}
	}
	return v.Struct(g)
}

// Struct validates any tagged struct and converts failures into *Error.
func (v *Validator) Struct(data any) error {
	err := v.engine.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validatorengine.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fe.Translate(v.trans),
		})
	}
	sort.SliceStable(out.Fields, func(i, j int) bool { return out.Fields[i].Field < out.Fields[j].Field })
	return out
}

func invitationRules(sl validatorengine.StructLevel) {
	inv := sl.Current().Interface().(models.Invitation)
	if inv.MapEmbed != nil && inv.MapEmbed.Kind == models.ContentHTML {
		sl.ReportError(inv.MapEmbed.Kind, "map_embed", "MapEmbed", "mapkind", "")
	}
}

func socialLinkRules(sl validatorengine.StructLevel) {
	link := sl.Current().Interface().(models.SocialLink)
	if link.EmbedCode != nil && link.EmbedCode.Kind != models.ContentEmbed {
		sl.ReportError(link.EmbedCode.Kind, "embed_code", "EmbedCode", "embedkind", "")
	}
}

// fieldPath drops the root struct name: "Invitation.bank_accounts[0].bank_name"
// becomes "bank_accounts[0].bank_name".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func registerMessage(engine *validatorengine.Validate, trans ut.Translator, tag, text string) {
	must(engine.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validatorengine.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
