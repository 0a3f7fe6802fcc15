package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"study-spotter-backend/internal/parse"
)

var registerOnce sync.Once

// registerValidators adds the form validators used in binding tags:
// "isodate" (YYYY-MM-DD) and "hhmm" (HH:MM, 00:00-23:59).
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := parse.ParseDate(fl.Field().String(), time.UTC)
			return err == nil
		})
		v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := parse.ParseClock(fl.Field().String())
			return err == nil
		})
	})
}
