package uploader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
)

const (
	DefaultSelector      = "API_KEY_1"
	DefaultResizeMethod  = "fit"
	DefaultConvertFormat = "image/webp"
	DefaultBackground    = "#ffffff"
)

type ResizeOptions struct {
	Method string `validate:"oneof=fit scale cover thumb"`
	Width  int    `validate:"gte=0"`
	Height int    `validate:"gte=0"`
}

type ConvertOptions struct {
	Format     string `validate:"omitempty,oneof=image/webp image/jpeg image/png image/avif"`
	Background string `validate:"omitempty,hexcolor"`
}

// Options describe what the relay should do with every file of a batch.
type Options struct {
	Selector  string `validate:"required"`
	Operation compressor.Operation
	Resize    ResizeOptions  `validate:"-"`
	Convert   ConvertOptions `validate:"-"`
}

func DefaultOptions() Options {
	return Options{
		Selector:  DefaultSelector,
		Operation: compressor.OperationCompress,
		Resize:    ResizeOptions{Method: DefaultResizeMethod},
		Convert:   ConvertOptions{Format: DefaultConvertFormat, Background: DefaultBackground},
	}
}

var validate = validator.New()

// Validate checks the options before any file is sent.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return describeValidationError(err)
	}

	switch o.Operation {
	case compressor.OperationCompress:
		return nil
	case compressor.OperationResize:
		if err := validate.Struct(o.Resize); err != nil {
			return describeValidationError(err)
		}
		if o.Resize.Width == 0 && o.Resize.Height == 0 {
			return ErrResizeDimensionsMissing
		}
		return nil
	case compressor.OperationConvert:
		if o.Convert.Format == "" {
			return ErrConvertFormatMissing
		}
		if err := validate.Struct(o.Convert); err != nil {
			return describeValidationError(err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, o.Operation)
	}
}

func describeValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	problems := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", e.Field()))
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
		case "gte":
			problems = append(problems, fmt.Sprintf("%s must not be negative", e.Field()))
		case "hexcolor":
			problems = append(problems, fmt.Sprintf("%s must be a hex color", e.Field()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(problems, "; "))
}

var (
	ErrInvalidOptions          = errors.New("invalid options")
	ErrUnknownOperation        = errors.New("unknown operation")
	ErrResizeDimensionsMissing = errors.New("please specify width and/or height for resize operation")
	ErrConvertFormatMissing    = errors.New("please specify a target format for convert operation")
)
