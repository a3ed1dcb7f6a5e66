package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Account codes are caller-chosen ledger identifiers, not UUIDs. Alphanumeric
// with dots and dashes, e.g. "1000" or "1000.AR-TRADE".
var accountCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]*$`)

func registerCustomValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("accountcode", func(fl validator.FieldLevel) bool {
		return accountCodePattern.MatchString(fl.Field().String())
	})
}
