package scan

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-texmark/pkg/interfaces"
)

var ErrDelimitersRequired = errors.New("texmark config: at least one math delimiter is required")
var ErrDelimiterMarkerRequired = errors.New("texmark config: delimiter markers must not be blank")
var ErrDelimiterDuplicate = errors.New("texmark config: delimiter pair declared twice")

// DefaultDelimiters returns the built-in delimiter set: $$...$$ display math
// first, then $...$ inline math. Order matters; the first spec whose markers
// both occur in a text node wins.
func DefaultDelimiters() []interfaces.DelimiterSpec {
	return []interfaces.DelimiterSpec{
		{Left: "$$", Right: "$$", Display: true},
		{Left: "$", Right: "$", Display: false},
	}
}

// ValidateDelimiters checks that every spec carries non-blank markers and that
// no Left/Right pair is declared twice. Failures wrap one of the ErrDelimiter
// sentinels.
func ValidateDelimiters(specs []interfaces.DelimiterSpec) error {
	if err := validation.Validate(specs, validation.Required.Error("at least one delimiter is required")); err != nil {
		return fmt.Errorf("%w: %w", ErrDelimitersRequired, err)
	}
	seen := make(map[[2]string]struct{}, len(specs))
	for _, spec := range specs {
		if err := validateSpec(spec); err != nil {
			return fmt.Errorf("%w: %w", ErrDelimiterMarkerRequired, err)
		}
		key := [2]string{spec.Left, spec.Right}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s...%s", ErrDelimiterDuplicate, spec.Left, spec.Right)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateSpec(spec interfaces.DelimiterSpec) error {
	notBlank := validation.By(func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError("texmark.delimiter.blank", "marker must not be blank")
		}
		return nil
	})
	return validation.ValidateStruct(&spec,
		validation.Field(&spec.Left, validation.Required, notBlank),
		validation.Field(&spec.Right, validation.Required, notBlank),
	)
}
