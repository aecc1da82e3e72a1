package types

import (
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"golang.org/x/xerrors"
)

var validate *validator.Validate

var translator ut.Translator

func init() {
	validate = validator.New()

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterValidation("utf8", validUTF8)
	validate.RegisterTranslation("utf8", translator, func(ut ut.Translator) error {
		return ut.Add("utf8", "{0} must be valid UTF-8 text", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("utf8", fe.Field())
		return t
	})
}

// validUTF8 rejects the strings that would not survive a JSON encoding.
func validUTF8(fl validator.FieldLevel) bool {
	return utf8.ValidString(fl.Field().String())
}

// Check validates the struct against its tags and returns the first
// violation in a readable form.
func Check(val interface{}) error {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	verrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	if len(verrors) < 1 {
		return nil
	}

	return xerrors.New(verrors[0].Translate(translator))
}

// Validate returns an error if the course input is not acceptable.
func (nc NewCourse) Validate() error {
	return Check(nc)
}
