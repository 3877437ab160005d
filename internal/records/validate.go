// ABOUTME: Struct validation built on go-playground/validator with English messages
// ABOUTME: Registers access code, class, date, weekday and section-of-class rules

package records

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DateLayout is the ISO day format used for attendance and class logs
const DateLayout = "2006-01-02"

var (
	accessCodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

	// custom validation tags & texts
	customTexts = map[string]string{
		"required":   "this field is required",
		"email":      "must be a valid email address",
		"accesscode": "must be exactly 6 digits",
		"classname":  "must be one of 6th, 7th, 8th, 9th, 10th",
		"isodate":    "must be a date in YYYY-MM-DD form",
		"weekday":    "must be a day from Monday to Saturday",
		"section":    "is not a section of the selected class",
	}

	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")

	validate = validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("accesscode", func(fl validator.FieldLevel) bool {
		return IsAccessCode(fl.Field().String())
	})
	_ = validate.RegisterValidation("classname", func(fl validator.FieldLevel) bool {
		return ClassName(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return IsDate(fl.Field().String())
	})
	_ = validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		day := fl.Field().String()
		for _, d := range Weekdays {
			if d == day {
				return true
			}
		}
		return false
	})
	validate.RegisterStructValidation(sectionOfClass, Student{}, ClassLog{}, TimeTableEntry{})

	for tag, text := range customTexts {
		registerTranslation(tag, text)
	}
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// sectionOfClass rejects a section that does not belong to the record's class.
func sectionOfClass(sl validator.StructLevel) {
	var class ClassName
	var section string
	switch v := sl.Current().Interface().(type) {
	case Student:
		class, section = v.Class, v.Section
	case ClassLog:
		class, section = v.Class, v.Section
	case TimeTableEntry:
		class, section = v.Class, v.Section
	default:
		return
	}
	// An unknown class or empty section is already reported by field tags
	if !class.Valid() || section == "" {
		return
	}
	if !ValidSection(class, section) {
		sl.ReportError(section, "section", "Section", "section", "")
	}
}

// IsAccessCode reports whether s is exactly six ASCII digits.
func IsAccessCode(s string) bool {
	return accessCodeRegex.MatchString(s)
}

// IsDate reports whether s is an ISO day such as 2024-01-10.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Validate checks v against its validate tags. Failures come back as a
// *ValidationError wrapping ErrInvalidInput.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fe.Translate(translator)})
	}
	return NewValidationError(ErrInvalidInput, fields...)
}
