package api

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Kayky4/vitasyn/internal/availability"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, ok := availability.ParseClock(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return availability.DayID(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct returns a readable message listing every failed field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}
