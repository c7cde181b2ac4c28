package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"travelbooking/internal/domain"
)

var (
	validate = newValidate()
	once     sync.Once
)

func newValidate() *validator.Validate {
	v := validator.New()
	install(v)
	return v
}

func install(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return domain.IsRegion(fl.Field().String())
	})
	_ = v.RegisterValidation("transport", func(fl validator.FieldLevel) bool {
		return domain.TransportType(fl.Field().String()).Valid()
	})
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// RegisterBindings installs the custom tags on gin's binding validator.
// Safe to call more than once.
func RegisterBindings() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			install(v)
		}
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	return Fields(validate.Struct(v))
}

// Fields flattens validation errors into field -> failed tag. Errors that
// are not validation errors (malformed JSON and the like) land under "body".
func Fields(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// AsError wraps Fields(err) in a domain.ValidationError.
func AsError(err error) error {
	fields := Fields(err)
	if fields == nil {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}
