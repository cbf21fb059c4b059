// Package extract provides the extraction strategies the router chains:
// a video strategy backed by yt-dlp, an article strategy that fetches
// markup over HTTP, and a headless browser fallback driven by go-rod.
//
// The article and browser strategies share one readability parser and the
// same size validation, so a page yields the same content whichever path
// produced its markup.
package extract
