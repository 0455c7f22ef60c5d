package pipeline

import "errors"

// Sentinel errors for markup building.
var (
	// ErrTemplateParse indicates the document template set is malformed.
	ErrTemplateParse = errors.New("template parsing failed")

	// ErrTemplateRender indicates executing the document template failed.
	ErrTemplateRender = errors.New("template rendering failed")

	// ErrDescriptionRender indicates the description could not be converted.
	ErrDescriptionRender = errors.New("description rendering failed")

	// ErrMarkupParse indicates generated markup could not be inspected.
	ErrMarkupParse = errors.New("markup parsing failed")
)
