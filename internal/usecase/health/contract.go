package health

import "context"

// DBPinger checks database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ExtractorChecker checks the face extraction service.
type ExtractorChecker interface {
	HealthCheck(ctx context.Context) error
}
