package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"absensi/internal/services"
)

// RegisterValidators adds the custom tags used in request bodies to gin's
// validator. Call once at startup.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := services.ParseClock(fl.Field().String())
		return err == nil
	})
}
