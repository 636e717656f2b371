package http

// Error is the JSON error envelope returned by every endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Point carries a coordinate pair in request and response bodies.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewOrder is the request body for order registration.
// An empty id is replaced with a generated one.
type NewOrder struct {
	ID          string   `json:"id"`
	Items       []string `json:"items"`
	TruckID     string   `json:"truckId"`
	Source      Point    `json:"source"`
	Destination Point    `json:"destination"`
}

// OrderCreated is the response body for a successful registration.
type OrderCreated struct {
	ID string `json:"id"`
}

// StartTracking is the request body for tracking activation.
type StartTracking struct {
	UseRoute bool `json:"useRoute"`
}

// Order is a single row of the active orders listing.
type Order struct {
	ID          string `json:"id"`
	TruckID     string `json:"truckId,omitempty"`
	Source      Point  `json:"source"`
	Current     Point  `json:"current"`
	Destination Point  `json:"destination"`
	Status      string `json:"status"`
	Tracking    bool   `json:"tracking"`
}

// Track is the response body for a single order position lookup.
type Track struct {
	ID                      string  `json:"id"`
	Source                  Point   `json:"source"`
	Current                 Point   `json:"current"`
	Destination             Point   `json:"destination"`
	Status                  string  `json:"status"`
	DistanceToDestinationKm float64 `json:"distanceToDestinationKm"`
}
