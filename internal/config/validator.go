package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "http.timeout_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateHTTP()...)
	errors = append(errors, c.validateEngine()...)
	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validatePaths()...)

	return errors
}

// validateHTTP validates the HTTPConfig
func (c *Config) validateHTTP() []ValidationError {
	var errors []ValidationError

	if c.HTTP.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "http.timeout_seconds",
			Value:   c.HTTP.TimeoutSeconds,
			Message: "must be positive",
		})
	}

	const maxTimeoutSeconds = 300
	if c.HTTP.TimeoutSeconds > maxTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "http.timeout_seconds",
			Value:   c.HTTP.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeoutSeconds),
		})
	}

	if c.HTTP.MaxRetries < 1 {
		errors = append(errors, ValidationError{
			Field:   "http.max_retries",
			Value:   c.HTTP.MaxRetries,
			Message: "must be at least 1 (the first attempt counts)",
		})
	}

	const maxRetries = 10
	if c.HTTP.MaxRetries > maxRetries {
		errors = append(errors, ValidationError{
			Field:   "http.max_retries",
			Value:   c.HTTP.MaxRetries,
			Message: fmt.Sprintf("exceeds maximum of %d", maxRetries),
		})
	}

	if c.HTTP.RetryDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "http.retry_delay_ms",
			Value:   c.HTTP.RetryDelayMs,
			Message: "must be non-negative",
		})
	}

	if c.HTTP.MaxRetryDelayMs < c.HTTP.RetryDelayMs {
		errors = append(errors, ValidationError{
			Field:   "http.max_retry_delay_ms",
			Value:   c.HTTP.MaxRetryDelayMs,
			Message: "must be at least retry_delay_ms",
		})
	}

	for _, f := range []struct {
		field string
		value string
	}{
		{"http.base_url", c.HTTP.BaseURL},
		{"http.member_base_url", c.HTTP.MemberBaseURL},
	} {
		if f.value == "" {
			errors = append(errors, ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: "cannot be empty",
			})
			continue
		}
		u, err := url.Parse(f.value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: "must be an absolute URL with scheme and host",
			})
		}
	}

	return errors
}

// validateEngine validates the EngineConfig
func (c *Config) validateEngine() []ValidationError {
	var errors []ValidationError

	if c.Engine.PoolSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.pool_size",
			Value:   c.Engine.PoolSize,
			Message: "must be at least 1",
		})
	}

	const maxPoolSize = 100
	if c.Engine.PoolSize > maxPoolSize {
		errors = append(errors, ValidationError{
			Field:   "engine.pool_size",
			Value:   c.Engine.PoolSize,
			Message: fmt.Sprintf("exceeds maximum of %d", maxPoolSize),
		})
	}

	if c.Engine.KeepLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.keep_limit",
			Value:   c.Engine.KeepLimit,
			Message: "must be non-negative",
		})
	}

	if c.Engine.StartSpacingMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.start_spacing_ms",
			Value:   c.Engine.StartSpacingMs,
			Message: "must be non-negative",
		})
	}

	if c.Engine.StopTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.stop_timeout_ms",
			Value:   c.Engine.StopTimeoutMs,
			Message: "must be positive",
		})
	}

	if c.Engine.CleanupTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.cleanup_timeout_ms",
			Value:   c.Engine.CleanupTimeoutMs,
			Message: "must be positive",
		})
	}

	if c.Engine.EvictionMaxPages < 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.eviction_max_pages",
			Value:   c.Engine.EvictionMaxPages,
			Message: "must be at least 1",
		})
	}

	if c.Engine.DeletePacingMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.delete_pacing_ms",
			Value:   c.Engine.DeletePacingMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateSession validates the SessionConfig
func (c *Config) validateSession() []ValidationError {
	var errors []ValidationError

	if c.Session.WriteCount < 1 {
		errors = append(errors, ValidationError{
			Field:   "session.write_count",
			Value:   c.Session.WriteCount,
			Message: "must be at least 1",
		})
	}

	if c.Session.RunHours < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.run_hours",
			Value:   c.Session.RunHours,
			Message: "must be non-negative (0 means unbounded)",
		})
	}

	if c.Session.UploadIntervalSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "session.upload_interval_seconds",
			Value:   c.Session.UploadIntervalSeconds,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

// validatePaths validates the PathsConfig
func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	for _, f := range []struct {
		field string
		value string
	}{
		{"paths.data_dir", c.Paths.DataDir},
		{"paths.session_file", c.Paths.SessionFile},
	} {
		if strings.ContainsRune(f.value, '\x00') {
			errors = append(errors, ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: "path contains invalid null character",
			})
		}

		const maxPathLength = 4096
		if len(f.value) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}
