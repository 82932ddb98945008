package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/flagx"
	"github.com/dmitrijs2005/trazo/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Interval
// fields use timex.Duration so both "15s" and integer nanoseconds parse.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC            string          `json:"endpoint_addr_grpc"`
	EndpointAddrMetrics         string          `json:"endpoint_addr_metrics"`
	DatabaseDSN                 string          `json:"database_dsn"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	Environment                 string          `json:"environment"`
	LogBackend                  string          `json:"log_backend"`
	LogLevel                    string          `json:"log_level"`

	ArchiveEnabled *bool  `json:"archive_enabled"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	RegistryBaseURL  string          `json:"registry_base_url"`
	RegistryToken    string          `json:"registry_token"`
	RegistryTimeout  *timex.Duration `json:"registry_timeout"`
	RegistryRetries  *int            `json:"registry_retries"`
	RegistryRPS      *float64        `json:"registry_rps"`
	RegistryCacheTTL *timex.Duration `json:"registry_cache_ttl"`

	DailyCap   *decimal.Decimal `json:"daily_cap"`
	MonthlyCap *decimal.Decimal `json:"monthly_cap"`

	AutomationThreshold  *float64 `json:"automation_threshold"`
	AutomationTargetRate *float64 `json:"automation_target_rate"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// $TRAZO_CONFIG) onto config. No file means no changes.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrMetrics, c.EndpointAddrMetrics)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.Environment, c.Environment)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)

	if c.ArchiveEnabled != nil {
		config.ArchiveEnabled = *c.ArchiveEnabled
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	setString(&config.RegistryBaseURL, c.RegistryBaseURL)
	setString(&config.RegistryToken, c.RegistryToken)
	if c.RegistryTimeout != nil {
		config.RegistryTimeout = c.RegistryTimeout.Duration
	}
	if c.RegistryRetries != nil {
		config.RegistryRetries = *c.RegistryRetries
	}
	if c.RegistryRPS != nil {
		config.RegistryRPS = *c.RegistryRPS
	}
	if c.RegistryCacheTTL != nil {
		config.RegistryCacheTTL = c.RegistryCacheTTL.Duration
	}

	if c.DailyCap != nil {
		config.DailyCap = *c.DailyCap
	}
	if c.MonthlyCap != nil {
		config.MonthlyCap = *c.MonthlyCap
	}
	if c.AutomationThreshold != nil {
		config.AutomationThreshold = *c.AutomationThreshold
	}
	if c.AutomationTargetRate != nil {
		config.AutomationTargetRate = *c.AutomationTargetRate
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
