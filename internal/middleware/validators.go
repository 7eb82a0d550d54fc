package middleware

import (
	"fmt"
	"sync"

	"ss-uniforms/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the `section` and `role` binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("middleware: unexpected validator engine %T", binding.Validator.Engine())
	}

	var err error
	registerOnce.Do(func() {
		if err = v.RegisterValidation("section", func(fl validator.FieldLevel) bool {
			return models.SectionType(fl.Field().String()).Valid()
		}); err != nil {
			return
		}
		err = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
	})
	return err
}
