// Package cache memoizes places-search results under a geo-quantized key.
//
// Coordinates are rounded to two decimal places (roughly 1.1 km) before the
// key is built, so callers searching from nearby points with the same radius
// and search type share one entry. Entries expire after a TTL. Expired
// entries are removed lazily on Get and in bulk by Sweep, which the
// maintenance scheduler runs on an interval.
//
// The store does not coalesce concurrent misses: two requests that miss the
// same key both reach upstream.
package cache
