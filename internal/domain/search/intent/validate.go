package intent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/stockdex/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads a JSON intent over the defaults and validates it.
// Unknown fields are rejected. Every failure wraps domain.ErrValidation.
func Decode(r io.Reader) (Intent, error) {
	in := Default()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return Intent{}, domain.NewFieldError("body", decodeReason(err))
	}
	if dec.More() {
		return Intent{}, domain.NewFieldError("body", "trailing data after intent object")
	}

	if err := in.Validate(); err != nil {
		return Intent{}, err
	}
	return in, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte) (Intent, error) {
	return Decode(bytes.NewReader(data))
}

// Validate checks the intent against its input contract.
func (in Intent) Validate() error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return domain.NewFieldError(fieldPath(fe.Namespace()), ruleReason(fe))
		}
		return domain.NewFieldError("intent", err.Error())
	}

	if n := len(in.CategoryCode.Codes()); n > MaxTerms {
		return domain.NewFieldError("category_code", fmt.Sprintf("too many codes (max %d)", MaxTerms))
	}
	p := in.Filters.Price
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return domain.NewFieldError("filters.price", fmt.Sprintf("min %d exceeds max %d", *p.Min, *p.Max))
	}
	return nil
}

// fieldPath drops the root struct name: "Intent.sort.by" -> "sort.by".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func ruleReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "max":
		return fmt.Sprintf("exceeds max %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}

func decodeReason(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type)
	}
	if errors.Is(err, io.EOF) {
		return "empty body"
	}
	return err.Error()
}
