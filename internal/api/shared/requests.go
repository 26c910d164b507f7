package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasktracker/internal/domain"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

// Global validator instance for reuse. Field errors are reported under
// their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return err
	}
	return nil
}

// FieldCodes maps "<json field>.<validator tag>" to the message code
// reported for that failure. Unlisted failures use domain.MsgInvalidField.
type FieldCodes map[string]string

// ValidateRequest validates v with its validate struct tags. The first
// failing field is returned as a *domain.ValidationError keyed by its JSON name.
func ValidateRequest(v interface{}, codes FieldCodes) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	code, ok := codes[fe.Field()+"."+fe.Tag()]
	if !ok {
		code = domain.MsgInvalidField
	}
	return domain.NewValidationError(fe.Field(), code, tagMessage(fe.Tag()), nil)
}

// tagMessage is the English fallback for a failed validator tag.
func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "this field is required."
	case "email":
		return "enter a valid email address."
	case "max":
		return "ensure this field is not too long."
	default:
		return "invalid value."
	}
}
