package models

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errBlank = errors.New("cannot be blank")

// Validate runs the presence checks required before a draft is submitted.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&d.ApproximateCost, validation.Min(0.0)),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
}
