package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds wardview-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds           int
	ShutdownBudgetSeconds  int
	APIPort                int
	BackendURL             string
	BackendToken           string
	FacilityID             string
	PushURL                string
	SnapshotTimeoutSeconds int
	ViewAPIToken           string
	SlackWebhookURL        string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.BackendURL, "backend-url", "", "base URL of the facility monitoring backend")
	fs.StringVar(&c.BackendToken, "backend-token", "", "bearer token for backend requests")
	fs.StringVar(&c.FacilityID, "facility-id", "", "facility this session is scoped to")
	fs.StringVar(&c.PushURL, "push-url", "", "websocket URL of the backend push channel (empty = manual refresh only)")
	fs.IntVar(&c.SnapshotTimeoutSeconds, "snapshot-timeout-seconds", 30, "deadline for snapshot and action requests (1..300)")
	fs.StringVar(&c.ViewAPIToken, "view-api-token", "", "bearer token required on view API requests (empty = no auth)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for critical alert escalations")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Backend access is required for every snapshot and action
	if c.BackendURL == "" {
		errs = append(errs, errors.New("BACKEND_URL is required"))
	}
	if c.BackendToken == "" {
		errs = append(errs, errors.New("BACKEND_TOKEN is required"))
	}

	// Every session is scoped to exactly one facility
	if c.FacilityID == "" {
		errs = append(errs, errors.New("FACILITY_ID is required"))
	}

	if c.SnapshotTimeoutSeconds <= 0 || c.SnapshotTimeoutSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SNAPSHOT_TIMEOUT_SECONDS %d (must be 1..300)", c.SnapshotTimeoutSeconds))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
