package classifier

import (
	"math"
	"testing"

	"github.com/greensight/carbonscan/internal/model"
)

// entry is a shorthand constructor for trace entries.
func entry(url, initiator string, size int64) model.ResourceTraceEntry {
	return model.ResourceTraceEntry{URL: url, InitiatorType: initiator, TransferSize: size}
}

// TestClassifyGrouping tests the classification rules entry by entry.
func TestClassifyGrouping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry model.ResourceTraceEntry
		want  model.ResourceGroupType
		// excluded is true when the entry should land in no group.
		excluded bool
	}{
		{name: "script by initiator", entry: entry("/a.js", "script", 100), want: model.GroupScripts},
		{name: "image by initiator", entry: entry("/b.png", "img", 100), want: model.GroupImages},
		{name: "stylesheet by link initiator", entry: entry("/c.css", "link", 100), want: model.GroupCSS},
		{name: "stylesheet by css initiator", entry: entry("/c.css", "css", 100), want: model.GroupCSS},
		{name: "link initiator without extension", entry: entry("/manifest.json", "link", 100), want: model.GroupLinks},
		{name: "other initiator", entry: entry("/data", "other", 100), want: model.GroupOther},

		// Extension priority over initiator type.
		{name: "png fetched by script", entry: entry("/sprite.png", "script", 100), want: model.GroupImages},
		{name: "css background image", entry: entry("/bg.webp", "css", 100), want: model.GroupImages},
		{name: "uppercase extension", entry: entry("/HERO.JPG", "other", 100), want: model.GroupImages},
		{name: "query string stripped", entry: entry("/logo.svg?v=2&w=640", "link", 100), want: model.GroupImages},
		{name: "avif image", entry: entry("/pic.avif", "fetch", 100), want: model.GroupImages},

		// Fonts have no category of their own.
		{name: "woff2 font", entry: entry("/font.woff2", "css", 100), want: model.GroupOther},
		{name: "ttf font by link", entry: entry("/font.ttf", "link", 100), want: model.GroupOther},

		// Rejection rules.
		{name: "empty url", entry: entry("", "img", 100), excluded: true},
		{name: "empty initiator", entry: entry("/a.png", "", 100), excluded: true},
		{name: "zero size", entry: entry("/a.png", "img", 0), excluded: true},
		{name: "negative size", entry: entry("/a.png", "img", -5), excluded: true},
		{name: "unknown initiator without extension", entry: entry("/api/data", "fetch", 100), excluded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			groups := Classify([]model.ResourceTraceEntry{tt.entry})

			total := 0
			for _, gt := range model.GroupTypes {
				total += len(groups[gt].Resources)
			}

			if tt.excluded {
				if total != 0 {
					t.Fatalf("entry %+v should be excluded, found in %d group(s)", tt.entry, total)
				}
				return
			}

			if total != 1 {
				t.Fatalf("entry %+v appears in %d groups, want exactly 1", tt.entry, total)
			}
			if len(groups[tt.want].Resources) != 1 {
				t.Errorf("entry %+v not classified as %v", tt.entry, tt.want)
			}
		})
	}
}

// TestClassifyAlwaysFiveGroups tests that every group type is present even
// for empty input.
func TestClassifyAlwaysFiveGroups(t *testing.T) {
	t.Parallel()

	for _, entries := range [][]model.ResourceTraceEntry{nil, {}, {entry("/a.js", "script", 10)}} {
		groups := Classify(entries)
		if len(groups) != len(model.GroupTypes) {
			t.Fatalf("got %d groups, want %d", len(groups), len(model.GroupTypes))
		}
		for _, gt := range model.GroupTypes {
			group, ok := groups[gt]
			if !ok {
				t.Fatalf("missing group %v", gt)
			}
			if group.Name != gt.String() {
				t.Errorf("group %v has name %q, want %q", gt, group.Name, gt.String())
			}
			if group.Resources == nil {
				t.Errorf("group %v has nil resource list", gt)
			}
		}
	}
}

// TestClassifyOrderingAndTotals tests descending size order, stable ties,
// and the group total invariant.
func TestClassifyOrderingAndTotals(t *testing.T) {
	t.Parallel()

	groups := Classify([]model.ResourceTraceEntry{
		entry("/small.png", "img", 512),
		entry("/tie-first.png", "img", 2048),
		entry("/big.png", "img", 8192),
		entry("/tie-second.png", "img", 2048),
	})

	images := groups[model.GroupImages]
	wantOrder := []string{"/big.png", "/tie-first.png", "/tie-second.png", "/small.png"}
	if len(images.Resources) != len(wantOrder) {
		t.Fatalf("got %d image resources, want %d", len(images.Resources), len(wantOrder))
	}
	for i, url := range wantOrder {
		if images.Resources[i].URL != url {
			t.Errorf("resources[%d] = %q, want %q", i, images.Resources[i].URL, url)
		}
	}

	// Non-increasing order by size.
	for i := 1; i < len(images.Resources); i++ {
		if images.Resources[i].Size > images.Resources[i-1].Size {
			t.Errorf("resources not ordered by size at index %d", i)
		}
	}

	// Group total equals the sum of member sizes.
	var sum float64
	for _, res := range images.Resources {
		sum += res.Size
	}
	if math.Abs(images.TotalSize-sum) > 1e-9 {
		t.Errorf("TotalSize = %v, want sum of members %v", images.TotalSize, sum)
	}
	if images.TotalSize != 12800.0/1024.0 {
		t.Errorf("TotalSize = %v KB, want %v KB", images.TotalSize, 12800.0/1024.0)
	}
}

// TestClassifyEndToEndScenario tests the documented three-resource scenario.
func TestClassifyEndToEndScenario(t *testing.T) {
	t.Parallel()

	groups := Classify([]model.ResourceTraceEntry{
		entry("/a.js", "script", 2048),
		entry("/b.png", "img", 1024),
		entry("/c.css", "link", 512),
	})

	checks := []struct {
		group model.ResourceGroupType
		total float64
		urls  []string
	}{
		{model.GroupScripts, 2.0, []string{"/a.js"}},
		{model.GroupImages, 1.0, []string{"/b.png"}},
		{model.GroupCSS, 0.5, []string{"/c.css"}},
		{model.GroupLinks, 0, nil},
		{model.GroupOther, 0, nil},
	}

	for _, c := range checks {
		group := groups[c.group]
		if group.TotalSize != c.total {
			t.Errorf("%v TotalSize = %v, want %v", c.group, group.TotalSize, c.total)
		}
		if len(group.Resources) != len(c.urls) {
			t.Errorf("%v has %d resources, want %d", c.group, len(group.Resources), len(c.urls))
			continue
		}
		for i, url := range c.urls {
			if group.Resources[i].URL != url {
				t.Errorf("%v resources[%d] = %q, want %q", c.group, i, group.Resources[i].URL, url)
			}
		}
	}
}

// TestClassifyContentIdentifiers tests that managed-asset identifiers are
// attached without affecting classification.
func TestClassifyContentIdentifiers(t *testing.T) {
	t.Parallel()

	assetURL := "/getcontentasset/4dc45f1e-90b5-4e1f-9283-18b7a55a55a3/1f0a2b3c-4d5e-6f70-8190-a1b2c3d4e5f6/hero.png"
	groups := Classify([]model.ResourceTraceEntry{
		entry(assetURL, "img", 4096),
		entry("/plain.png", "img", 2048),
	})

	images := groups[model.GroupImages]
	if len(images.Resources) != 2 {
		t.Fatalf("got %d image resources, want 2", len(images.Resources))
	}

	withID := images.Resources[0]
	if withID.ContentItemID == nil {
		t.Error("managed asset resource has no content identifier")
	} else if withID.ContentItemID.String() != "4dc45f1e-90b5-4e1f-9283-18b7a55a55a3" {
		t.Errorf("content identifier = %s, want 4dc45f1e-90b5-4e1f-9283-18b7a55a55a3", withID.ContentItemID)
	}
	if withID.ContentHubURL != "" {
		t.Errorf("classification resolved a live link %q, want empty", withID.ContentHubURL)
	}
	if images.Resources[1].ContentItemID != nil {
		t.Error("plain resource unexpectedly has a content identifier")
	}
}
