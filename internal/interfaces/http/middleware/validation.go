package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// wilayaCount is the number of Algerian wilayas since the 2019 split
const wilayaCount = 58

// SetupValidator configures the gin binding validator with custom tags.
// Call once at startup, before the first request is bound.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// wilaya: a valid Algerian wilaya identifier
	_ = v.RegisterValidation("wilaya", func(fl validator.FieldLevel) bool {
		id := fl.Field().Int()
		return id >= 1 && id <= wilayaCount
	})
}
