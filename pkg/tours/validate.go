package tours

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/manzanit0/tourplanner/pkg/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the payload.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("logtime", func(fl validator.FieldLevel) bool {
		_, err := ParseLogTime(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("totaltime", func(fl validator.FieldLevel) bool {
		_, err := NormalizeTotalTime(fl.Field().String())
		return err == nil
	})

	return v
}

func ValidateTour(in TourInput) error {
	return validationError(validate.Struct(in))
}

// ValidateLog checks the fields present in in. With create set, every field
// except the comment is required.
func ValidateLog(in LogInput, create bool) error {
	if create {
		required := []struct {
			name    string
			missing bool
		}{
			{"logTime", in.LogTime == nil},
			{"difficulty", in.Difficulty == nil},
			{"rating", in.Rating == nil},
			{"totalDistance", in.TotalDistance == nil},
			{"totalTime", in.TotalTime == nil},
		}

		for _, r := range required {
			if r.missing {
				return apperr.Validation("%s is required", r.name)
			}
		}
	}

	return validationError(validate.Struct(in))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindValidation, "invalid input", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s is required", fe.Field())
	case "min", "max":
		return apperr.Validation("%s must be between 1 and 5", fe.Field())
	case "gte":
		return apperr.Validation("%s must be positive", fe.Field())
	case "logtime":
		return apperr.Validation("%s must match yyyy-MM-ddTHH:mm[:ss]", fe.Field())
	case "totaltime":
		return apperr.Validation("%s must match HH:mm[:ss]", fe.Field())
	default:
		return apperr.Validation("%s is invalid", fe.Field())
	}
}
