package cmd

import "time"

// Config carries every runtime setting of the tracker service.
// Values are read from the environment in cmd/app.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	NatsURL    string
	EventTopic string

	OrsAPIKey  string
	OrsBaseURL string

	RedisAddr     string
	RouteCacheTTL time.Duration

	TickCronSpec string
	StepSize     float64
	Epsilon      float64
	RouteTimeout time.Duration
}
