package server

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

// bindError 请求参数不合法，返回400
type bindError struct {
	msg string
}

func (e *bindError) Error() string {
	return e.msg
}

// binder 解析查询参数，经 mold 清理、补默认值后校验
type binder struct {
	decoder  *schema.Decoder
	conform  *mold.Transformer
	validate *validator.Validate
}

func newBinder() *binder {
	decoder := schema.NewDecoder()
	decoder.SetAliasTag("query")
	decoder.IgnoreUnknownKeys(true)

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &binder{
		decoder:  decoder,
		conform:  modifiers.New(),
		validate: validate,
	}
}

func (b *binder) bindQuery(r *http.Request, dst interface{}) error {
	if err := b.decoder.Decode(dst, r.URL.Query()); err != nil {
		if errs, ok := err.(schema.MultiError); ok {
			for _, e := range errs {
				if convErr, ok := e.(schema.ConversionError); ok {
					return &bindError{msg: fmt.Sprintf("%q should be of type %s", convErr.Key, convErr.Type)}
				}
			}
		}
		return errors.WithStack(err)
	}

	if err := b.conform.Struct(r.Context(), dst); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(dst); err != nil {
		return errors.WithStack(err)
	}

	if err := b.validate.Struct(dst); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return &bindError{msg: formatValidationError(errs[0])}
		}
		return errors.WithStack(err)
	}
	return nil
}

func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", err.Field(), strings.ReplaceAll(err.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%q must be at least %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%q is invalid", err.Field())
	}
}
