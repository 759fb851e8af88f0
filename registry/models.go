// Package registry defines the content registry's data model and the
// capability-typed surface of the remote registry service.
package registry

import (
	"fmt"

	"github.com/veralith/provenance/types"
)

// ContentType classifies registered content.
type ContentType uint8

const (
	ContentImage ContentType = iota
	ContentAudio
	ContentVideo
	ContentText
	ContentModel
	ContentOther
)

var contentTypeNames = [...]string{"image", "audio", "video", "text", "model", "other"}

func (t ContentType) String() string {
	if int(t) < len(contentTypeNames) {
		return contentTypeNames[t]
	}
	return fmt.Sprintf("contenttype(%d)", uint8(t))
}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return int(t) < len(contentTypeNames)
}

// ParseContentType parses a content type name.
func ParseContentType(s string) (ContentType, error) {
	for i, name := range contentTypeNames {
		if name == s {
			return ContentType(i), nil
		}
	}
	return 0, fmt.Errorf("registry: unknown content type %q", s)
}

// ContentRecord is a registered piece of content. The id is assigned by
// the remote registry on registration and is authoritative; it is never
// guessed locally. URI fields and the active flag change only through
// explicit update operations issued by the record's creator.
type ContentRecord struct {
	types.Entity
	ID          int64       `json:"id"`
	Creator     string      `json:"creator"`
	ContentURI  string      `json:"content_uri"`
	MetadataURI string      `json:"metadata_uri"`
	ContentType ContentType `json:"content_type"`
	Active      bool        `json:"active"`
}

// Event names emitted by the remote registry service. The registration
// pipeline depends on these exact names and on stable argument ordering.
const (
	EventContentRegistered    = "ContentRegistered"
	EventContentUpdated       = "ContentUpdated"
	EventContentStatusChanged = "ContentStatusChanged"
)
