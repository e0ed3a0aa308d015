package errors

import (
	"errors"

	"github.com/matzehuels/treecontrast/pkg/phylo"
	"github.com/matzehuels/treecontrast/pkg/pic"
)

// Classify maps an error from the core packages to its error code.
// Sentinel errors from phylo and pic carry no code themselves (they follow
// stdlib error conventions); the CLI and the HTTP API use Classify to expose
// a uniform machine-readable code. An already-coded *Error keeps its code;
// anything unrecognized classifies as INTERNAL_ERROR.
func Classify(err error) Code {
	switch {
	case err == nil:
		return ""
	case GetCode(err) != "":
		return GetCode(err)
	case errors.Is(err, phylo.ErrMalformedTree),
		errors.Is(err, phylo.ErrInvalidTipLabel),
		errors.Is(err, phylo.ErrDuplicateTipLabel),
		errors.Is(err, phylo.ErrUnknownNode),
		errors.Is(err, phylo.ErrReparentedNode):
		return ErrCodeMalformedTree
	case errors.Is(err, phylo.ErrCycleDetected):
		return ErrCodeCycleDetected
	case errors.Is(err, pic.ErrTraitMismatch):
		return ErrCodeTraitMismatch
	case errors.Is(err, pic.ErrNonFiniteTrait):
		return ErrCodeInvalidInput
	case errors.Is(err, pic.ErrDegenerateBranch):
		return ErrCodeDegenerateBranch
	default:
		return ErrCodeInternal
	}
}
