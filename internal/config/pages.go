package config

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/greensight/carbonscan/internal/model"
)

// PageConfig declares one page to measure.
type PageConfig struct {
	// ID is the stable page identifier reports are stored under.
	ID int64 `yaml:"id"`

	// Language is the page's language code (BCP 47). Empty means the
	// file-level default language.
	Language string `yaml:"language,omitempty"`

	// URL is the page's URL. Relative URLs are resolved against the
	// file-level base URL.
	URL string `yaml:"url"`

	// Name is the page's display name for the dashboard. Empty means the
	// URL is used.
	Name string `yaml:"name,omitempty"`
}

// PageDefaults holds file-level defaults applied to pages that omit a value.
type PageDefaults struct {
	// Language is the default language code.
	Language string `yaml:"language,omitempty"`

	// BaseURL is prepended to relative page URLs.
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// File represents the structure of the .carbonscan configuration file.
type File struct {
	// Renderer is the headless-renderer endpoint. Overrides the built-in
	// default when set; the CLI flag overrides both.
	Renderer string `yaml:"renderer,omitempty"`

	// CollectorScript is the site-relative collector script path.
	CollectorScript string `yaml:"collectorScript,omitempty"`

	// GreenCheck is the green-hosting registry endpoint.
	GreenCheck string `yaml:"greenCheck,omitempty"`

	// Defaults contains values applied to all pages unless overridden
	// in the page declaration.
	Defaults PageDefaults `yaml:"defaults,omitempty"`

	// Pages lists the pages to measure.
	Pages []PageConfig `yaml:"pages,omitempty"`
}

// Normalize applies defaults and canonicalizes language codes.
// It must be called once after loading, before the pages are used.
//
// Language codes are parsed as BCP 47 tags so "EN-us" and "en-US" refer to
// the same page; an unparseable code is a configuration error, not a silent
// new page identity.
func (cf *File) Normalize() error {
	defaultLang := cf.Defaults.Language
	if defaultLang == "" {
		defaultLang = "en"
	}
	canonical, err := canonicalLanguage(defaultLang)
	if err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	cf.Defaults.Language = canonical

	for i := range cf.Pages {
		p := &cf.Pages[i]
		if p.ID <= 0 || p.URL == "" {
			return fmt.Errorf("page index %d: %w", i, ErrInvalidPage)
		}

		if p.Language == "" {
			p.Language = cf.Defaults.Language
		} else {
			canonical, err := canonicalLanguage(p.Language)
			if err != nil {
				return fmt.Errorf("page %d: %w", p.ID, err)
			}
			p.Language = canonical
		}

		if cf.Defaults.BaseURL != "" && strings.HasPrefix(p.URL, "/") {
			p.URL = strings.TrimSuffix(cf.Defaults.BaseURL, "/") + p.URL
		}
		if p.Name == "" {
			p.Name = p.URL
		}
	}

	return nil
}

// canonicalLanguage parses and re-renders a BCP 47 language code.
func canonicalLanguage(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, code)
	}
	return tag.String(), nil
}

// Page returns the declaration for the given page ID and language.
func (cf *File) Page(id int64, lang string) (PageConfig, error) {
	for _, p := range cf.Pages {
		if p.ID == id && p.Language == lang {
			return p, nil
		}
	}
	return PageConfig{}, fmt.Errorf("page %d (%s): %w", id, lang, ErrPageNotFound)
}

// PagesFor returns all page declarations for a language.
func (cf *File) PagesFor(lang string) []PageConfig {
	var pages []PageConfig
	for _, p := range cf.Pages {
		if p.Language == lang {
			pages = append(pages, p)
		}
	}
	return pages
}

// PageMetadata implements dashboard.MetadataSource over the declared pages.
func (cf *File) PageMetadata(_ context.Context, lang string) (map[int64]model.PageMetadata, error) {
	meta := make(map[int64]model.PageMetadata)
	for _, p := range cf.PagesFor(lang) {
		meta[p.ID] = model.PageMetadata{Name: p.Name, URL: p.URL}
	}
	return meta, nil
}
