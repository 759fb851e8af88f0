package royalty

import (
	"fmt"

	"github.com/veralith/provenance/types"
)

// Template is a named, reusable royalty configuration that can be applied
// to any content id.
type Template struct {
	Name        string
	Description string
	Setting     Setting
}

// Built-in license templates. The Setting's ContentID is zero until the
// template is applied.
var builtinTemplates = map[string]Template{
	"standard": {
		Name:        "Standard License",
		Description: "Basic royalty agreement with fixed percentage",
		Setting: Setting{
			Model:       ModelPercentage,
			BasisPoints: 500, // 5%
		},
	},
	"commercial": {
		Name:        "Commercial License",
		Description: "Higher royalty for commercial use",
		Setting: Setting{
			Model:       ModelPercentage,
			BasisPoints: 1000, // 10%
		},
	},
	"tiered": {
		Name:        "Tiered License",
		Description: "Royalty rate increases with usage volume",
		Setting: Setting{
			Model: ModelTiered,
			Thresholds: []types.Amount{
				types.NewAmount(100),
				types.NewAmount(1000),
				types.NewAmount(10000),
			},
			Rates: []uint32{500, 750, 1000}, // 5%, 7.5%, 10%
		},
	},
	"fixed": {
		Name:        "Fixed Fee License",
		Description: "Fixed fee per use regardless of sale price",
		Setting: Setting{
			Model:  ModelFixed,
			Amount: types.MustParseAmount("10000000000000000"), // 0.01 of an 18-decimal native unit
		},
	},
}

// TemplateByName looks up a built-in template by its key
// (standard, commercial, tiered, fixed).
func TemplateByName(name string) (Template, error) {
	t, ok := builtinTemplates[name]
	if !ok {
		return Template{}, fmt.Errorf("royalty: unknown template %q", name)
	}
	return t, nil
}

// Apply returns the template's setting bound to a content id and
// recipient.
func (t Template) Apply(contentID int64, recipient string) Setting {
	s := t.Setting
	s.ContentID = contentID
	s.Recipient = recipient
	return s
}
