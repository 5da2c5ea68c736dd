package validation

import (
	"github.com/go-playground/validator/v10"
)

func init() {
	MustRegisterGinAlias("priority", "min=0")
	MustRegisterGinAlias("delay", "min=0")
	MustRegisterGin("interval", ValidatePositiveMillis)
}

// ValidatePositiveMillis validates a millisecond duration field is strictly
// positive — recurring intervals may never be zero or negative (scheduler
// §3 invariant: a recurring event always has a future next occurrence).
func ValidatePositiveMillis(fl validator.FieldLevel) bool {
	return fl.Field().Int() > 0
}
