package mutation

import "errors"

var (
	// ErrTemplateMissing is returned when no template exists for a
	// (category, locale) pair.
	ErrTemplateMissing = errors.New("template not available")

	// ErrTemplateMalformed is returned when a template lacks a placeholder
	// its strategy fills in.
	ErrTemplateMalformed = errors.New("template is malformed")

	// ErrContentLoss is returned when a strategy would drop or alter an
	// existing line. The improvement is discarded.
	ErrContentLoss = errors.New("modification would alter existing content")

	// ErrTemplateIneffective is returned when an inserted section does not
	// satisfy the marker it was meant to add.
	ErrTemplateIneffective = errors.New("inserted template does not provide the expected section")

	// ErrLocaleMismatch is returned for an improvement computed for a
	// different locale than the one being rendered.
	ErrLocaleMismatch = errors.New("improvement locale does not match document locale")
)

// ErrNoTarget is returned for an improvement that names no section.
var ErrNoTarget = errors.New("improvement has no target section")
