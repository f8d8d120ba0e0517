// Package renderer acquires raw page traces for analysis.
//
// A renderer loads a URL and returns a PageTrace: total transferred bytes
// plus one entry per network resource. Two implementations exist:
//
//   - Client talks to a headless-browser renderer service that injects the
//     emissions collector script into the page and returns its JSON output.
//   - StaticAnalyzer is a degraded, browser-free fallback that fetches the
//     page HTML, discovers referenced resources, and measures their sizes
//     with plain HTTP requests.
//
// All trace payloads pass JSON Schema validation at this boundary, so the
// classifier never sees loosely-typed or malformed data.
package renderer
