// Package emissions estimates the carbon cost of a page view and grades it.
//
// The estimate follows the Sustainable Web Design model: transferred bytes
// are converted to energy, energy to grams of CO2 using grid intensity
// figures, with a discount for pages on verified green hosting. The letter
// grade boundaries come from the SWD digital carbon ratings.
//
// Green-hosting lookups query the Green Web Foundation registry over HTTP;
// a failed lookup degrades to an unknown status, never an error that would
// block report generation.
package emissions
