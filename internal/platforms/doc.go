// Package platforms holds what the platform searchers share: the throttle
// that keeps each searcher inside its API's limits, a small JSON client for
// the REST platforms, and the rules that turn a platform's hits into a
// domain.PlatformSearchResult.
//
// Each searcher lives in its own subpackage and implements
// driven.PlatformSearcher.
package platforms
