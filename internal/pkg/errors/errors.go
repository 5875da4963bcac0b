package errors

import "errors"

var (
	ErrInvalid          = errors.New("invalid")
	ErrNotFound         = errors.New("not found")
	ErrDocumentEmpty    = errors.New("document has no indexable content")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrGenerationFailed = errors.New("generation failed")
	ErrInternal         = errors.New("internal")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
