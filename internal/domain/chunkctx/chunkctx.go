// Package chunkctx holds the per-fragment records handed to answer generation
// and reference resolution.
package chunkctx

import (
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
)

// AccessState is the entitlement outcome for a fragment's document.
type AccessState string

// Access states.
const (
	AccessGranted    AccessState = "granted"
	AccessRestricted AccessState = "restricted"
)

// Mode selects which ChunkContext shape is built.
type Mode int

const (
	// ModeGeneration builds the full shape for answer synthesis.
	ModeGeneration Mode = iota
	// ModeReference builds the reduced shape for citation resolution.
	ModeReference
)

// ChunkContext is one fragment prepared for the language model. In
// ModeGeneration the full metadata is populated; in ModeReference only
// Summary and AccessMessage are.
type ChunkContext struct {
	ChunkID       string
	DocumentID    string
	Access        AccessState
	AccessMessage string
	PartIndex     int
	PartTotal     int

	// Generation shape.
	Title       string
	ParentTitle string
	Author      string
	Date        time.Time
	ContentType domain.ContentType
	Text        string
	SlideText   string

	// Reference shape.
	Summary string
}
