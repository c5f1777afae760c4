package services

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/allforone/afo-portal/internal/models"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

const yearMonthTag = "yearmonth"

var (
	validate   *validator.Validate
	translator ut.Translator
)

// Messages shown for the checks the portal runs before calling the backend.
// Keys are "<json field>.<tag>".
var fieldMessages = map[string]string{
	"mdp.min":            "Le mot de passe doit contenir au moins 8 caractères",
	"nouveauMdp.min":     "Le mot de passe doit contenir au moins 8 caractères",
	"confirmMdp.eqfield": "Les mots de passe ne correspondent pas",
	"resetCode.len":      "Le code doit contenir exactement 6 chiffres",
	"resetCode.numeric":  "Le code doit contenir exactement 6 chiffres",
	"resetCode.required": "Le code doit contenir exactement 6 chiffres",
	"acceptTerms.eq":     "Vous devez accepter les conditions et règlements pour continuer",
	"email.required":     "Veuillez entrer votre adresse email",
	"mois.required":      "Veuillez choisir un mois",
	"mois.yearmonth":     "Le mois doit être au format AAAA-MM",
	"montant.gt":         "Le montant doit être supérieur à 0",
	"userIds.min":        "Veuillez sélectionner au moins un membre",
}

func init() {
	validate = validator.New()

	_fr := fr.New()
	uni := ut.New(_fr, _fr)
	translator, _ = uni.GetTranslator("fr")
	_ = fr_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(yearMonthTag, func(fl validator.FieldLevel) bool {
		_, ok := models.ParseMonth(fl.Field().String())
		return ok
	})
}

// ValidationError carries per-field messages of a failed local check. No
// backend call is made when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if m := e.Fields[k]; !seen[m] {
			seen[m] = true
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, ", ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// IsValidationError reports whether err is a local validation failure.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// Validate runs the struct's validate tags and translates failures to French.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		if _, done := fields[fe.Field()]; done {
			continue
		}
		if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			fields[fe.Field()] = msg
			continue
		}
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields}
}

// PasswordStrength scores a password from 0 to 5: length of at least 8 and
// of at least 12, mixed case, a digit, a symbol.
func PasswordStrength(password string) int {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	n := len([]rune(password))
	score := 0
	for _, ok := range []bool{n >= 8, n >= 12, lower && upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}
