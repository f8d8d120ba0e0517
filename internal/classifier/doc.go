// Package classifier turns a raw performance-resource trace into
// category-grouped, size-aggregated resource groups.
//
// Classification is a pure computation: it never performs I/O, never fails,
// and degrades malformed entries to exclusion rather than errors. Every
// call produces all five resource groups, empty groups included.
package classifier
