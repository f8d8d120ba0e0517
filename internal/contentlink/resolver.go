package contentlink

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
)

// ErrLinkNotFound is returned by a Resolver when the content item behind an
// extracted identifier no longer exists in the admin system.
var ErrLinkNotFound = errors.New("content item not found")

// contentAssetPattern matches managed content-asset URLs of the shape
// /getcontentasset/{contentItemID}/{assetID}. The capture is deliberately
// loose; uuid.Parse performs the actual identifier validation.
var contentAssetPattern = regexp.MustCompile(`(?i)/getcontentasset/([\w-]+)/[\w-]+`)

// ExtractContentID extracts the content item identifier from a resource URL.
// It returns false when the URL does not match the content-asset shape or
// when the identifier segment is not a valid UUID. Pure and deterministic;
// no I/O.
func ExtractContentID(resourceURL string) (uuid.UUID, bool) {
	if resourceURL == "" {
		return uuid.UUID{}, false
	}

	m := contentAssetPattern.FindStringSubmatch(resourceURL)
	if m == nil {
		return uuid.UUID{}, false
	}

	id, err := uuid.Parse(m[1])
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// Resolver resolves an extracted content identifier into a live admin URL
// for the given language. Implementations perform external lookups and are
// injected by the host; resolution failures must be reported as errors
// (ErrLinkNotFound for missing items) rather than empty URLs.
type Resolver interface {
	ResolveLink(ctx context.Context, id uuid.UUID, language string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, id uuid.UUID, language string) (string, error)

// ResolveLink calls f.
func (f ResolverFunc) ResolveLink(ctx context.Context, id uuid.UUID, language string) (string, error) {
	return f(ctx, id, language)
}
