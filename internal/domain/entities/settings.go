package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	SCMTypeGitHub         = "github"
	SCMTypeLocal          = "local"
	PlatformCloudFoundry  = "cloudfoundry"
	StoreTypePostgres     = "postgres"
	StoreTypeBadger       = "badger"
	defaultAppType        = "gds"
	defaultBranchVariable = "GIT_BRANCH"
	defaultCommitVariable = "GIT_COMMIT"
	defaultWorkers        = 4
	defaultCallTimeout    = 20 * time.Second
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryMax       = 3
	defaultRequestsPerSec = 10
	defaultBurst          = 5
	defaultServerAddress  = ":8080"
	defaultMetricsJob     = "driftwatch"
)

// DefaultCleanupTokens are stripped from declared scm values when the
// settings file does not configure its own list.
func DefaultCleanupTokens() []string {
	return []string{
		"https://github.com/",
		"http://github.com/",
		"git@github.com:",
		".git",
	}
}

// Settings is the top-level configuration for driftwatch.
type Settings struct {
	SCM      SCMSettings      `yaml:"scm"`
	Platform PlatformSettings `yaml:"platform"`
	HTTP     HTTPSettings     `yaml:"http"`
	Engine   EngineSettings   `yaml:"engine"`
	Outputs  OutputSettings   `yaml:"outputs"`
	Metrics  MetricsSettings  `yaml:"metrics"`
	Server   ServerSettings   `yaml:"server"`
}

// SCMSettings describes where repositories and pipeline declarations live.
type SCMSettings struct {
	Type          string   `yaml:"type"           validate:"oneof=github local"`
	Token         string   `yaml:"token"` // Inline, ${ENV_VAR}, or file path
	BaseURL       string   `yaml:"base_url"       validate:"omitempty,url"`
	LocalRoot     string   `yaml:"local_root"`    // local: directory holding owner/repo clones
	PipelineRepo  string   `yaml:"pipeline_repo"` // github: "owner/repo" holding the declarations
	PipelinePath  string   `yaml:"pipeline_path"` // directory of declarations inside the repo or on disk
	AllowedOwners []string `yaml:"allowed_owners" validate:"min=1,dive,required"`
	CleanupTokens []string `yaml:"cleanup_tokens"`
}

// PlatformSettings describes the deployment platform API.
type PlatformSettings struct {
	Type           string `yaml:"type"            validate:"oneof=cloudfoundry"`
	Endpoint       string `yaml:"endpoint"        validate:"required,url"`
	TokenURL       string `yaml:"token_url"       validate:"omitempty,url"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	Proxy          string `yaml:"proxy"           validate:"omitempty,url"`
	AppType        string `yaml:"app_type"`
	BranchVariable string `yaml:"branch_variable"`
	CommitVariable string `yaml:"commit_variable"`
}

// HTTPSettings tunes the transport shared by every gateway.
type HTTPSettings struct {
	Timeout           time.Duration `yaml:"timeout"`
	RetryMax          int           `yaml:"retry_max"           validate:"gte=0"`
	RetryWaitMin      time.Duration `yaml:"retry_wait_min"`
	RetryWaitMax      time.Duration `yaml:"retry_wait_max"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int           `yaml:"burst"               validate:"gte=0"`
}

// EngineSettings tunes the reconciliation engine.
type EngineSettings struct {
	Workers     int           `yaml:"workers"      validate:"gte=0"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// OutputSettings selects where outcomes are written. Every non-empty entry
// is used.
type OutputSettings struct {
	CSVPath     string          `yaml:"csv"`
	PostgresURL string          `yaml:"postgres_url"`
	BadgerPath  string          `yaml:"badger_path"`
	Archive     ArchiveSettings `yaml:"archive"`
}

// ArchiveSettings points at an S3-compatible bucket receiving the CSV report.
type ArchiveSettings struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Secure    bool   `yaml:"secure"`
}

// Enabled reports whether report archiving is configured.
func (a ArchiveSettings) Enabled() bool {
	return a.Endpoint != "" && a.Bucket != ""
}

// MetricsSettings configures the Prometheus Pushgateway used after batch runs.
type MetricsSettings struct {
	PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
	Job            string `yaml:"job"`
}

// ServerSettings configures the report HTTP server.
type ServerSettings struct {
	Address string `yaml:"address"`
	Store   string `yaml:"store" validate:"omitempty,oneof=postgres badger"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a settings file, expanding environment
// variables, resolving token file paths and applying defaults.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return ParseSettings(data)
}

// ParseSettings parses settings from YAML content.
func ParseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.SCM.Token = resolveToken(settings.SCM.Token)
	settings.Platform.Username = resolveToken(settings.Platform.Username)
	settings.Platform.Password = resolveToken(settings.Platform.Password)
	settings.Outputs.PostgresURL = resolveToken(settings.Outputs.PostgresURL)
	settings.Outputs.Archive.AccessKey = resolveToken(settings.Outputs.Archive.AccessKey)
	settings.Outputs.Archive.SecretKey = resolveToken(settings.Outputs.Archive.SecretKey)

	applyDefaults(&settings)

	if validateErr := validate(&settings); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".driftwatch.yaml",
		".driftwatch.yml",
		"driftwatch.yaml",
		"driftwatch.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the value from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

func applyDefaults(settings *Settings) {
	if settings.SCM.Type == "" {
		settings.SCM.Type = SCMTypeGitHub
	}
	if settings.SCM.CleanupTokens == nil {
		settings.SCM.CleanupTokens = DefaultCleanupTokens()
	}
	if settings.Platform.Type == "" {
		settings.Platform.Type = PlatformCloudFoundry
	}
	if settings.Platform.AppType == "" {
		settings.Platform.AppType = defaultAppType
	}
	if settings.Platform.BranchVariable == "" {
		settings.Platform.BranchVariable = defaultBranchVariable
	}
	if settings.Platform.CommitVariable == "" {
		settings.Platform.CommitVariable = defaultCommitVariable
	}
	if settings.HTTP.Timeout == 0 {
		settings.HTTP.Timeout = defaultHTTPTimeout
	}
	if settings.HTTP.RetryMax == 0 {
		settings.HTTP.RetryMax = defaultRetryMax
	}
	if settings.HTTP.RequestsPerSecond == 0 {
		settings.HTTP.RequestsPerSecond = defaultRequestsPerSec
	}
	if settings.HTTP.Burst == 0 {
		settings.HTTP.Burst = defaultBurst
	}
	if settings.Engine.Workers == 0 {
		settings.Engine.Workers = defaultWorkers
	}
	if settings.Engine.CallTimeout == 0 {
		settings.Engine.CallTimeout = defaultCallTimeout
	}
	if settings.Metrics.Job == "" {
		settings.Metrics.Job = defaultMetricsJob
	}
	if settings.Server.Address == "" {
		settings.Server.Address = defaultServerAddress
	}
	if settings.Server.Store == "" {
		switch {
		case settings.Outputs.PostgresURL != "":
			settings.Server.Store = StoreTypePostgres
		case settings.Outputs.BadgerPath != "":
			settings.Server.Store = StoreTypeBadger
		}
	}
}

// validate checks struct constraints first, then the cross-field rules the
// tags cannot express.
func validate(settings *Settings) error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(settings); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("%s is invalid (%s)", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid settings: %w", err)
	}

	switch settings.SCM.Type {
	case SCMTypeGitHub:
		if settings.SCM.Token == "" {
			return errors.New(
				"scm.token is required for github (set inline, via ${ENV_VAR}, or as file path)",
			)
		}
		if _, _, ok := SplitSCMIdentifier(settings.SCM.PipelineRepo); !ok {
			return fmt.Errorf("scm.pipeline_repo must be \"owner/repo\", got %q", settings.SCM.PipelineRepo)
		}
	case SCMTypeLocal:
		if settings.SCM.LocalRoot == "" {
			return errors.New("scm.local_root is required for local repositories")
		}
		if settings.SCM.PipelinePath == "" {
			return errors.New("scm.pipeline_path is required for local repositories")
		}
	}

	if settings.Outputs.Archive.Enabled() && settings.Outputs.CSVPath == "" {
		return errors.New("outputs.archive requires outputs.csv to be set")
	}

	return nil
}
