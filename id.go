package provenance

import "github.com/veralith/provenance/id"

// ID is the primary identifier type for locally minted entities.
// Content and license ids are remote-assigned integers and never use it.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
