package compose

import (
	"fmt"
	"time"

	"plannercal/internal/model"
)

// Document is a finished render pass: opaque bytes plus metadata. A
// Document is only ever complete; a failed pass returns an error and no
// bytes.
type Document struct {
	Bytes       []byte
	PageCount   int
	GeneratedAt time.Time
	RangeStart  time.Time
	RangeEnd    time.Time

	// Warnings lists events that were dropped or rerouted during layout.
	// Their presence does not make the pass a failure.
	Warnings []model.Warning
}

// RenderTargetError is a fatal failure of one render pass. It carries the
// warnings collected before the failure so callers can still report them.
type RenderTargetError struct {
	Target   string
	Warnings []model.Warning
	Err      error
}

func (e *RenderTargetError) Error() string {
	return fmt.Sprintf("compose: %s render failed: %v", e.Target, e.Err)
}

func (e *RenderTargetError) Unwrap() error {
	return e.Err
}
