package telemetry

// This file defines error message templates for common failure scenarios.
// Templates provide consistent, actionable error messages with
// troubleshooting steps, and centralize maintenance of that text.
//
// Usage:
//
//	if meili.IsAPIErrorCode(err, "invalid_token") {
//	    return fmt.Errorf(telemetry.ErrInvalidAPIKeyTemplate, baseURL)
//	}

// Error message templates for common scenarios
const (
	// ErrInvalidAPIKeyTemplate is returned when the Meilisearch instance rejects the configured API key.
	ErrInvalidAPIKeyTemplate = `The Meilisearch instance at %s rejected the configured API key.

Troubleshooting steps:
1. Verify the 'apiKey' field in config.yaml matches the instance master or private key
2. Check the key with: curl -H "X-Meili-API-Key: <key>" <host>/keys
3. If the instance runs without a master key, remove the 'apiKey' field entirely
`

	// ErrUnreachableTemplate is returned when the Meilisearch instance cannot be reached at all.
	ErrUnreachableTemplate = `The Meilisearch instance at %s is unreachable: %v

Troubleshooting steps:
1. Verify the 'scheme', 'host' and 'port' fields in config.yaml
2. Check the instance is running: curl <host>/health
3. Check firewalls and TLS settings (see 'insecureSkipVerify' for self-signed certificates)
`
)
