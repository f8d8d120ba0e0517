package model

import (
	"encoding/json"
	"fmt"
)

// ResourceGroupType identifies the semantic category a network resource
// belongs to after classification.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and map keys. The String() method provides
// the display name, and JSON marshaling uses the display name so persisted
// report blobs stay readable.
type ResourceGroupType int

const (
	// GroupImages holds image resources. File extension wins over the
	// browser-reported initiator, so CSS background images land here too.
	GroupImages ResourceGroupType = iota

	// GroupScripts holds JavaScript resources reported with the "script"
	// initiator type.
	GroupScripts

	// GroupLinks holds resources fetched via <link> elements that are not
	// stylesheets (preloads, manifests, favicons without an image extension).
	GroupLinks

	// GroupCSS holds stylesheets. Extension match wins over initiator type.
	GroupCSS

	// GroupOther holds everything else that still has a recognized initiator,
	// including font files, which have no dedicated category.
	GroupOther
)

// GroupTypes lists every group in classification order.
// Every classification result contains exactly these five groups.
var GroupTypes = []ResourceGroupType{
	GroupImages,
	GroupScripts,
	GroupLinks,
	GroupCSS,
	GroupOther,
}

// DisplayOrder lists the groups in the order they are rendered in reports.
// The ordering is a product decision (heaviest categories first), not
// alphabetical, and differs from the declaration order above.
var DisplayOrder = []ResourceGroupType{
	GroupImages,
	GroupCSS,
	GroupScripts,
	GroupLinks,
	GroupOther,
}

// String returns the human-readable display name of the group.
func (t ResourceGroupType) String() string {
	switch t {
	case GroupImages:
		return "Images"
	case GroupScripts:
		return "Scripts"
	case GroupLinks:
		return "Links"
	case GroupCSS:
		return "CSS"
	case GroupOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// InitiatorType returns the canonical browser initiator string that maps to
// this group when no file extension rule applies.
func (t ResourceGroupType) InitiatorType() string {
	switch t {
	case GroupImages:
		return "img"
	case GroupScripts:
		return "script"
	case GroupLinks:
		return "link"
	case GroupCSS:
		return "css"
	case GroupOther:
		return "other"
	default:
		return ""
	}
}

// MarshalJSON encodes the group type as its display name.
func (t ResourceGroupType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a display name back into the group type.
// Unknown names are rejected so corrupted blobs fail loudly at read time
// rather than silently reclassifying resources.
func (t *ResourceGroupType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, gt := range GroupTypes {
		if gt.String() == name {
			*t = gt
			return nil
		}
	}
	return fmt.Errorf("unknown resource group type: %q", name)
}

// GreenHostingStatus reports whether the page's hosting provider is on a
// renewable-energy registry.
//
// Design decision: We use string-backed constants rather than iota because
// the value is persisted inside report rows and rendered directly in the
// dashboard; a self-describing string survives schema evolution better than
// a bare integer.
type GreenHostingStatus string

const (
	// GreenHostingGreen means the host was found on the green hosting registry.
	GreenHostingGreen GreenHostingStatus = "Green"

	// GreenHostingNotGreen means the registry responded and the host was absent.
	GreenHostingNotGreen GreenHostingStatus = "NotGreen"

	// GreenHostingUnknown means the registry lookup failed or was skipped.
	GreenHostingUnknown GreenHostingStatus = "Unknown"
)

// Valid reports whether s is one of the defined statuses.
func (s GreenHostingStatus) Valid() bool {
	switch s {
	case GreenHostingGreen, GreenHostingNotGreen, GreenHostingUnknown:
		return true
	default:
		return false
	}
}
