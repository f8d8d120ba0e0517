package contentlink

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/greensight/carbonscan/internal/model"
)

// TestExtractContentID tests identifier extraction from resource URLs.
func TestExtractContentID(t *testing.T) {
	t.Parallel()

	validID := "4dc45f1e-90b5-4e1f-9283-18b7a55a55a3"

	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{
			name:   "content asset url",
			url:    "/getcontentasset/" + validID + "/1f0a2b3c-4d5e-6f70-8190-a1b2c3d4e5f6",
			wantID: validID,
			wantOK: true,
		},
		{
			name:   "absolute url with query string",
			url:    "https://example.com/getcontentasset/" + validID + "/1f0a2b3c-4d5e-6f70-8190-a1b2c3d4e5f6?w=640",
			wantID: validID,
			wantOK: true,
		},
		{
			name:   "case insensitive path segment",
			url:    "/GetContentAsset/" + validID + "/1f0a2b3c-4d5e-6f70-8190-a1b2c3d4e5f6",
			wantID: validID,
			wantOK: true,
		},
		{
			name:   "identifier is not a uuid",
			url:    "/getcontentasset/not-a-uuid/1f0a2b3c-4d5e-6f70-8190-a1b2c3d4e5f6",
			wantOK: false,
		},
		{
			name:   "missing asset segment",
			url:    "/getcontentasset/" + validID,
			wantOK: false,
		},
		{
			name:   "unrelated url",
			url:    "/static/app.js",
			wantOK: false,
		},
		{
			name:   "empty url",
			url:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, ok := ExtractContentID(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("ExtractContentID(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if ok && id.String() != tt.wantID {
				t.Errorf("ExtractContentID(%q) = %s, want %s", tt.url, id, tt.wantID)
			}
		})
	}
}

// linkedReport builds a report with n linkable resources and one plain one.
func linkedReport(n int) *model.SustainabilityReport {
	groups := make(map[model.ResourceGroupType]*model.ExternalResourceGroup)
	images := model.NewExternalResourceGroup(model.GroupImages)
	for i := 0; i < n; i++ {
		id := uuid.New()
		images.Resources = append(images.Resources, model.ExternalResource{
			URL:           fmt.Sprintf("/getcontentasset/%s/%s", id, uuid.New()),
			Size:          1,
			ContentItemID: &id,
		})
	}
	images.Resources = append(images.Resources, model.ExternalResource{URL: "/plain.png", Size: 1})
	groups[model.GroupImages] = images

	return model.NewSustainabilityReport(
		model.PageKey{WebPageID: 1, Language: "en"},
		groups, 1024, 0, "", model.GreenHostingUnknown, time.Now(),
	)
}

// TestLinkerResolveReport tests link resolution fan-out and degradation.
func TestLinkerResolveReport(t *testing.T) {
	t.Parallel()

	t.Run("resolves every identified resource", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		resolver := ResolverFunc(func(_ context.Context, id uuid.UUID, language string) (string, error) {
			calls.Add(1)
			return "/admin/content/" + language + "/" + id.String(), nil
		})

		report := linkedReport(5)
		linker := NewLinker(resolver, WithResolveConcurrency(2))
		if err := linker.ResolveReport(context.Background(), report); err != nil {
			t.Fatalf("ResolveReport returned error: %v", err)
		}

		if calls.Load() != 5 {
			t.Errorf("resolver called %d times, want 5", calls.Load())
		}

		for _, group := range report.ResourceGroups {
			for _, res := range group.Resources {
				if res.ContentItemID != nil && res.ContentHubURL == "" {
					t.Errorf("resource %s has no resolved link", res.URL)
				}
				if res.ContentItemID == nil && res.ContentHubURL != "" {
					t.Errorf("resource %s without identifier got link %q", res.URL, res.ContentHubURL)
				}
			}
		}
	})

	t.Run("partial failure degrades that resource only", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		resolver := ResolverFunc(func(_ context.Context, id uuid.UUID, _ string) (string, error) {
			if calls.Add(1) == 1 {
				return "", ErrLinkNotFound
			}
			return "/admin/content/" + id.String(), nil
		})

		report := linkedReport(3)
		linker := NewLinker(resolver)
		if err := linker.ResolveReport(context.Background(), report); err != nil {
			t.Fatalf("ResolveReport returned error: %v", err)
		}

		resolved := 0
		for _, res := range report.ResourceGroups[0].Resources {
			if res.ContentHubURL != "" {
				resolved++
			}
		}
		if resolved != 2 {
			t.Errorf("resolved %d links, want 2 (one degraded)", resolved)
		}
	})

	t.Run("cancelled context aborts resolution", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		resolver := ResolverFunc(func(context.Context, uuid.UUID, string) (string, error) {
			return "/admin", nil
		})

		if err := NewLinker(resolver).ResolveReport(ctx, linkedReport(3)); !errors.Is(err, context.Canceled) {
			t.Errorf("ResolveReport error = %v, want context.Canceled", err)
		}
	})

	t.Run("nil resolver is a no-op", func(t *testing.T) {
		t.Parallel()

		report := linkedReport(2)
		if err := NewLinker(nil).ResolveReport(context.Background(), report); err != nil {
			t.Fatalf("ResolveReport returned error: %v", err)
		}
	})
}

// TestLinkerResolveReports tests resolution across multiple reports.
func TestLinkerResolveReports(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	resolver := ResolverFunc(func(_ context.Context, id uuid.UUID, _ string) (string, error) {
		calls.Add(1)
		return "/admin/content/" + id.String(), nil
	})

	reports := []*model.SustainabilityReport{linkedReport(2), linkedReport(3)}
	if err := NewLinker(resolver).ResolveReports(context.Background(), reports); err != nil {
		t.Fatalf("ResolveReports returned error: %v", err)
	}

	if calls.Load() != 5 {
		t.Errorf("resolver called %d times, want 5", calls.Load())
	}
}
