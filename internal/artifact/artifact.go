// Package artifact describes the artifacts an analysis job operates on.
package artifact

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// Kind distinguishes what an artifact reference points at.
type Kind string

// Artifact kinds.
const (
	KindArtwork Kind = "artwork"
	KindBio     Kind = "bio"
)

// Descriptor is the analysis-facing view of an artifact. It is assembled once
// per job and never mutated after dispatch.
type Descriptor struct {
	Ref     string
	Kind    Kind
	Title   string
	Medium  string
	Text    string
	OwnerID uuid.UUID
}

// Validate checks that a descriptor carries enough material to analyze.
func (d *Descriptor) Validate() error {
	if d.Ref == "" {
		return fmt.Errorf("artifact ref is required")
	}
	if strings.TrimSpace(d.Text) == "" {
		return fmt.Errorf("artifact text is required")
	}
	switch d.Kind {
	case KindArtwork, KindBio:
	default:
		return fmt.Errorf("unknown artifact kind: %s", d.Kind)
	}
	return nil
}

// FromBioHTML builds a bio descriptor from raw HTML of an artist bio page.
// Script, style, and chrome elements are stripped and whitespace collapsed so
// prompts carry readable text rather than markup.
func FromBioHTML(ref string, ownerID uuid.UUID, htmlContent string) (*Descriptor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bio HTML: %w", err)
	}

	doc.Find("script, style, nav, header, footer, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := collapseWhitespace(doc.Find("body").Text())
	if text == "" {
		// Some fragments have no <body> wrapper
		text = collapseWhitespace(doc.Text())
	}
	if text == "" {
		return nil, fmt.Errorf("bio page contains no extractable text")
	}

	return &Descriptor{
		Ref:     ref,
		Kind:    KindBio,
		Title:   title,
		Text:    text,
		OwnerID: ownerID,
	}, nil
}

// collapseWhitespace squeezes runs of whitespace (including newlines) into
// single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
