package classifier

import (
	"sort"
	"strings"

	"github.com/greensight/carbonscan/internal/contentlink"
	"github.com/greensight/carbonscan/internal/model"
)

// Extension sets checked against the URL path, query string stripped,
// case-insensitively. Extension matches take priority over the
// browser-reported initiator type because the initiator is unreliable for
// indirectly loaded resources (a CSS background image reports "css" or
// "link", not "img", but is still image weight).
var (
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp", ".ico", ".avif"}
	fontExtensions  = []string{".woff", ".woff2", ".ttf", ".otf", ".eot"}
	cssExtension    = ".css"
)

// Classify groups the trace entries into the five resource groups and
// aggregates their sizes.
//
// Per entry, first match wins:
//  1. Entries with an empty URL, empty initiator type, or non-positive
//     transfer size are excluded.
//  2. Image extension -> Images, regardless of initiator type.
//  3. Font extension -> Other (there is no dedicated font category).
//  4. CSS extension -> CSS, regardless of initiator type.
//  5. Initiator type matching a group's canonical initiator -> that group.
//  6. Anything else is excluded silently.
//
// Within each group, members are ordered by descending size; equal sizes
// keep their trace order. Group totals are the sum of member transfer
// sizes converted to kilobytes.
//
// For each retained entry a content identifier extraction is attempted and
// attached to the produced resource. This never affects classification.
func Classify(entries []model.ResourceTraceEntry) map[model.ResourceGroupType]*model.ExternalResourceGroup {
	groups := make(map[model.ResourceGroupType]*model.ExternalResourceGroup, len(model.GroupTypes))
	byteTotals := make(map[model.ResourceGroupType]int64, len(model.GroupTypes))
	for _, gt := range model.GroupTypes {
		groups[gt] = model.NewExternalResourceGroup(gt)
	}

	for _, entry := range entries {
		target, ok := groupFor(entry)
		if !ok {
			continue
		}

		resource := model.ExternalResource{
			URL:  entry.URL,
			Size: float64(entry.TransferSize) / model.BytesPerKB,
		}
		if id, ok := contentlink.ExtractContentID(entry.URL); ok {
			resource.ContentItemID = &id
		}

		groups[target].Resources = append(groups[target].Resources, resource)
		byteTotals[target] += entry.TransferSize
	}

	for _, gt := range model.GroupTypes {
		group := groups[gt]
		// Stable sort: equal sizes retain input relative order.
		sort.SliceStable(group.Resources, func(i, j int) bool {
			return group.Resources[i].Size > group.Resources[j].Size
		})
		group.TotalSize = float64(byteTotals[gt]) / model.BytesPerKB
	}

	return groups
}

// groupFor applies the classification rules to a single entry.
// The second return value is false when the entry is excluded.
func groupFor(entry model.ResourceTraceEntry) (model.ResourceGroupType, bool) {
	if entry.URL == "" || entry.InitiatorType == "" || entry.TransferSize <= 0 {
		return 0, false
	}

	path := pathOnly(entry.URL)
	switch {
	case hasAnyExtension(path, imageExtensions):
		return model.GroupImages, true
	case hasAnyExtension(path, fontExtensions):
		return model.GroupOther, true
	case hasExtension(path, cssExtension):
		return model.GroupCSS, true
	}

	for _, gt := range model.GroupTypes {
		if entry.InitiatorType == gt.InitiatorType() {
			return gt, true
		}
	}
	return 0, false
}

// pathOnly strips the query string at the first '?'.
func pathOnly(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// hasExtension reports whether path ends with ext, case-insensitively.
func hasExtension(path, ext string) bool {
	return len(path) >= len(ext) && strings.EqualFold(path[len(path)-len(ext):], ext)
}

// hasAnyExtension reports whether path ends with any of the extensions.
func hasAnyExtension(path string, exts []string) bool {
	for _, ext := range exts {
		if hasExtension(path, ext) {
			return true
		}
	}
	return false
}
