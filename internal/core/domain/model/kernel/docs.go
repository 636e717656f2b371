// Package kernel contains shared value objects of the tracking domain:
// validated WGS84 coordinates and the great-circle geometry used by the
// motion engine (haversine distance, epsilon proximity, bounded steps).
package kernel
