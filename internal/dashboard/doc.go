// Package dashboard builds the site-wide sustainability overview from the
// latest stored report of every page.
package dashboard
