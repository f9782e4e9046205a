package sheet

import (
	"fmt"
)

// Kind classifies a load warning.
type Kind string

const (
	// KindFetch means the source could not be fetched or was not tabular.
	KindFetch Kind = "fetch"
	// KindSchema means an expected column was missing or duplicated.
	KindSchema Kind = "schema"
	// KindParse means individual cell values could not be parsed.
	KindParse Kind = "parse"
)

// Warning is a non-fatal, human-readable notice produced while loading.
type Warning struct {
	Kind    Kind   `json:"kind"`
	Source  string `json:"source"`
	Field   string `json:"field,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Source, w.Message)
}

// FetchError reports that a source was unreachable or returned content
// that is not a table. Loader converts it into a KindFetch warning.
type FetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
