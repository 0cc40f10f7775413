// Package extract resolves a social-media page URL into direct media links.
//
// Providers (Cobalt instances, the RapidAPI autolink endpoint, and an
// OpenGraph page scraper) each normalize their upstream response into a
// Result. A Chain tries providers in order and stops at the first one that
// yields at least one media entry. A Router picks the chain for a URL from
// configured host routes, and an optional redis cache short-circuits repeat
// lookups.
//
// ParseQuality and SelectPair help callers choose the best video-only and
// audio-only pair to hand to the merge service.
package extract
