// Package validation checks service inputs before any store access.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/spec-kit/queuesmart/internal/domain"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// Validator validates tagged structs and renders failures as
// VALIDATION_FAILED domain errors with one English message per field.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

type enumTag struct {
	tag     string
	valid   func(string) bool
	allowed []string
}

var enumTags = []enumTag{
	{"ticket_category", func(s string) bool { return domain.TicketCategory(s).Valid() },
		[]string{"Housing", "Benefits", "Digital Support", "Wellbeing", "Other"}},
	{"urgency", func(s string) bool { return domain.TicketUrgency(s).Valid() },
		[]string{"Low", "Medium", "High", "Critical"}},
	{"ticket_status", func(s string) bool { return domain.TicketStatus(s).Valid() },
		[]string{"Open", "In Progress", "Waiting", "Closed"}},
	{"resolution", func(s string) bool { return domain.Resolution(s).Valid() },
		[]string{"Resolved", "Referred", "No Contact", "Duplicate"}},
	{"contact_method", func(s string) bool { return domain.ContactMethod(s).Valid() },
		[]string{"Phone", "Email", "Post", "In-Person"}},
	{"staff_role", func(s string) bool { return domain.StaffRole(s).Valid() },
		[]string{"Staff", "Manager"}},
}

// New builds a Validator with the domain enum tags registered.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	for _, et := range enumTags {
		et := et
		if err := validate.RegisterValidation(et.tag, func(fl validator.FieldLevel) bool {
			return et.valid(fl.Field().String())
		}); err != nil {
			return nil, err
		}
		message := "{0} must be one of: " + strings.Join(et.allowed, ", ")
		if err := validate.RegisterTranslation(et.tag, trans,
			func(t ut.Translator) error { return t.Add(et.tag, message, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(et.tag, fe.Field())
				return msg
			},
		); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: validate, translator: trans}, nil
}

// MustNew is New for package-level wiring; it panics on a registration bug.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Struct validates s. It returns nil or a VALIDATION_FAILED DomainError
// whose details map field names to messages.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Translate(v.translator)
	}
	return apperrors.NewValidationError(fieldErrs[0].Translate(v.translator), details)
}
