package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Validator. struct validator with english error messages, shared by the config loader and the http api.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewValidator() *Validator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return &Validator{validate: validate, trans: trans}
}

// Struct validates s and returns the translated messages of every failed field.
func (v *Validator) Struct(s interface{}) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}
	res := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		res = append(res, fmt.Sprintf("%s: %s", e.Namespace(), e.Translate(v.trans)))
	}
	return res
}

func (c *Config) Validate() error {
	if msgs := NewValidator().Struct(c); len(msgs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}
