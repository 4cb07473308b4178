package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a malformed request: no files, missing metadata,
	// unsupported values. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrExtraction marks a single file whose content could not be
	// extracted. Recovered locally by the batch orchestrator.
	ErrExtraction = errors.New("extraction failed")
	// ErrNotFound marks a missing batch, document, version or template.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation against a batch in an incompatible
	// lifecycle state, e.g. re-running a completed batch.
	ErrInvalidState = errors.New("invalid state")
	// ErrOrchestration marks a failure outside the per-file loop. Fatal to
	// the batch.
	ErrOrchestration = errors.New("orchestration fault")
	// ErrTemporary marks transient infrastructure failures worth retrying.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
