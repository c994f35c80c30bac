package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"bookable/internal/timegrid"
	"bookable/pkg/logger"
	"bookable/pkg/model"

	"github.com/go-playground/validator/v10"
)

var hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ThingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewThingValidator(log *logger.Logger) *ThingValidator {
	v := validator.New()

	if err := v.RegisterValidation("time_hhmm", validateTimeHHMM); err != nil {
		log.Fatal("Failed to register 'time_hhmm' validator",
			"error", err,
		)
	}

	log.Info("Thing validator initialized successfully")

	return &ThingValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

func (v *ThingValidator) Validate(thing *model.Thing) error {
	if err := v.validate.Struct(thing); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateWindow(thing.AvailStart, thing.AvailEnd)
}

func (v *ThingValidator) ValidateUpdate(update *model.ThingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.AvailStart != "" && update.AvailEnd != "" {
		return v.validateWindow(update.AvailStart, update.AvailEnd)
	}

	return nil
}

// validateWindow rejects an empty or inverted daily window. The tags already
// guarantee HH:MM shape, so ParseClock cannot fail here.
func (v *ThingValidator) validateWindow(availStart, availEnd string) error {
	start, err := timegrid.ParseClock(availStart)
	if err != nil {
		return ValidationErrors{ValidationError{Field: "AvailStart", Message: err.Error()}}
	}
	end, err := timegrid.ParseClock(availEnd)
	if err != nil {
		return ValidationErrors{ValidationError{Field: "AvailEnd", Message: err.Error()}}
	}

	if end <= start {
		return ValidationErrors{
			ValidationError{
				Field:   "AvailEnd",
				Message: "avail_end must be after avail_start",
			},
		}
	}

	return nil
}

func (v *ThingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA timezone name", err.Field())
		case "time_hhmm":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
