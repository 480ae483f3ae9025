package templates

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSelection is matched by errors.Is for any UnknownSelectionError
	ErrUnknownSelection = errors.New("unknown template selection")
	// ErrInvalidManifest reports a manifest that breaks a structural rule
	ErrInvalidManifest = errors.New("invalid manifest")
)

// UnknownSelectionError is returned when no manifest is registered for a selection
type UnknownSelectionError struct {
	Selection Selection
}

func (e *UnknownSelectionError) Error() string {
	return fmt.Sprintf("no template registered for feature %q, stack %q, variant %q",
		e.Selection.Feature, e.Selection.Stack, e.Selection.Variant)
}

func (e *UnknownSelectionError) Is(target error) bool {
	return target == ErrUnknownSelection
}
