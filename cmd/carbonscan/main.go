// Package main provides the entry point for the carbonscan CLI.
//
// Carbonscan measures the carbon footprint of web pages. It renders a page,
// classifies the transferred resources, estimates per-view CO2 emissions
// using the Sustainable Web Design model, and tracks the results over time.
//
// Usage:
//
//	carbonscan scan <page-url> --page <id>
//	carbonscan scan
//	carbonscan history <page-id>
//	carbonscan dashboard
//
// See --help for all available options.
package main

// main is the entry point for carbonscan.
func main() {
	Execute()
}
