// Package crawler fetches a verified company site and extracts structured
// content from its highest-value pages.
package crawler

import "github.com/rotisserie/eris"

// Structural crawl failures. Per-page failures below these are contained and
// never surface as errors.
var (
	// ErrRobotsDisallowed means the site's robots policy forbids crawling.
	ErrRobotsDisallowed = eris.New("crawl disallowed by robots policy")

	// ErrSeedUnreachable means the seed page could not be fetched after retries.
	ErrSeedUnreachable = eris.New("seed page unreachable")
)
