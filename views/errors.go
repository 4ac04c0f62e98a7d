package views

import (
	"fmt"

	"github.com/prior-it/hermes/core"
)

var (
	ErrListDirectory    = fmt.Errorf("cannot list template directory: %w", core.ErrInternal)
	ErrParseTemplate    = fmt.Errorf("cannot parse template: %w", core.ErrInternal)
	ErrTemplateNotFound = fmt.Errorf("template does not exist: %w", core.ErrNotFound)
	ErrRenderTemplate   = fmt.Errorf("cannot render template: %w", core.ErrInternal)
	ErrInvalidContext   = fmt.Errorf("invalid render context: %w", core.ErrInternal)
	ErrUnavailable      = fmt.Errorf("no templates loaded: %w", core.ErrInternal)
)
