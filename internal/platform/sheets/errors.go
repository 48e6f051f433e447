package sheets

import "fmt"

// ConfigError means the reader cannot run with the credentials it was given.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "sheets not configured: " + e.Msg }

// UpstreamError wraps a failed call to the token endpoint or the Sheets API.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

