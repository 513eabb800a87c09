package domain

import "fmt"

// ConfigurationError reports a required connection parameter that was
// never set. It is raised before any network call is attempted.
type ConfigurationError struct {
	Param string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Param)
}

// AuthenticationError reports a credential the remote service rejected.
type AuthenticationError struct {
	Endpoint string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication rejected by %s: check the configured API key", e.Endpoint)
}

// UpstreamError reports a failed or malformed remote response.
type UpstreamError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s returned status %d: %s", e.Endpoint, e.Status, e.Detail)
	}
	return fmt.Sprintf("upstream %s: %s", e.Endpoint, e.Detail)
}

// InvalidArgumentError reports a caller-violated precondition.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// NotFoundError reports a lookup that matched nothing, such as a
// retrieval pass that filtered out every candidate.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Reason
}
