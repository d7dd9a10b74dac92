package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"

	// UnknownRouteError represents a (broker, symbol) pair absent from the routing table.
	UnknownRouteError ErrorCode = "unknown_route"
	// ConnectionUnavailableError represents a worker session that could not be (re)established.
	ConnectionUnavailableError ErrorCode = "connection_unavailable"
	// ExtractionFailedError represents a tick download that failed inside the worker.
	ExtractionFailedError ErrorCode = "extraction_failed"
	// ExtractionTimeoutError represents a tick download that exceeded its deadline.
	ExtractionTimeoutError ErrorCode = "extraction_timeout"
	// ProcessLifecycleError represents a termination or signal operation that failed
	// for a reason other than the process already being gone.
	ProcessLifecycleError ErrorCode = "process_lifecycle"

	// RoutingConfigError represents an invalid routing table configuration.
	RoutingConfigError ErrorCode = "routing_config_error"
	// CredentialsConfigError represents invalid or missing platform credentials.
	CredentialsConfigError ErrorCode = "credentials_config_error"

	// KafkaPublishError represents an error when publishing tick batches to Kafka.
	KafkaPublishError ErrorCode = "kafka_publish_error"
	// RedisRegistryError represents an error against the Redis-backed worker registry.
	RedisRegistryError ErrorCode = "redis_registry_error"
)
