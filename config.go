package frontier

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the configuration instance the rest of frontier should
// access for global configuration values. See FrontierConfig for
// available members. Populated from a YAML file.
var Config FrontierConfig

// ConfigName is the path (relative or absolute) to the config file
// read by ReadConfigFile.
var ConfigName = "frontier.yaml"

func init() {
	SetDefaultConfig()
}

// FrontierConfig defines the available global configuration
// parameters.
type FrontierConfig struct {
	// Store holds every store.* key this config format recognizes.
	// Purge is consumed by kvstore/cassandra's NewStore, which calls its
	// own Purge (frontier.Purger, kvstore.go) when it is set; memstore's
	// New takes no config and always starts empty. `frontierd purge`
	// wipes a store regardless of this key.
	// Path is reserved for a future on-disk backend. BloomFilters/
	// MaxBackgroundJobs/MaxSubcompactions/MaxBytesForLevelBase are
	// embedded-store tuning knobs that parse and round-trip but are not
	// consumed by either shipped backend: memstore has no on-disk
	// compaction to tune, and kvstore/cassandra has its own
	// (gocql-level) tuning surface instead.
	Store struct {
		Path                 string `yaml:"path"`
		Purge                bool   `yaml:"purge"`
		BloomFilters         bool   `yaml:"bloom_filters"`
		MaxBackgroundJobs    int    `yaml:"max_background_jobs"`
		MaxSubcompactions    int    `yaml:"max_subcompactions"`
		MaxBytesForLevelBase int64  `yaml:"max_bytes_for_level_base"`
		Stats                bool   `yaml:"stats"`
	} `yaml:"store"`

	Get struct {
		DelayRequestableSecs int `yaml:"delay_requestable_secs"`
		MaxQueues            int `yaml:"max_queues"`
		MaxUrlsPerQueue      int `yaml:"max_urls_per_queue"`
	} `yaml:"get"`

	Cassandra struct {
		Hosts             []string `yaml:"hosts"`
		Keyspace          string   `yaml:"keyspace"`
		ReplicationFactor int      `yaml:"replication_factor"`
		Timeout           string   `yaml:"timeout"`
	} `yaml:"cassandra"`
}

// SetDefaultConfig resets Config to default values, regardless of what
// was previously loaded from a file.
func SetDefaultConfig() {
	Config = FrontierConfig{}
	Config.Store.Path = "./frontier-data"
	Config.Store.Purge = false
	Config.Store.BloomFilters = true
	Config.Store.MaxBackgroundJobs = 2
	Config.Store.MaxSubcompactions = 1
	Config.Store.MaxBytesForLevelBase = 256 * 1024 * 1024
	Config.Store.Stats = false

	Config.Get.DelayRequestableSecs = 30
	Config.Get.MaxQueues = 0
	Config.Get.MaxUrlsPerQueue = 0

	Config.Cassandra.Hosts = []string{"localhost"}
	Config.Cassandra.Keyspace = "url_frontier"
	Config.Cassandra.ReplicationFactor = 1
	Config.Cassandra.Timeout = "2s"
}

// ReadConfigFile sets a new path to the frontier YAML config file and
// forces a reload of Config.
func ReadConfigFile(path string) error {
	ConfigName = path
	return readConfig()
}

func assertConfigInvariants() error {
	var errs []string

	if Config.Get.DelayRequestableSecs < 0 {
		errs = append(errs, "get.delay_requestable_secs must be >= 0")
	}
	if Config.Store.Path == "" {
		errs = append(errs, "store.path must not be empty")
	}
	if _, err := time.ParseDuration(Config.Cassandra.Timeout); err != nil {
		errs = append(errs, fmt.Sprintf("cassandra.timeout failed to parse: %v", err))
	}

	if len(errs) > 0 {
		em := ""
		for _, e := range errs {
			log.Errorf("config error: %v", e)
			em += "\t" + e + "\n"
		}
		return fmt.Errorf("config error:\n%v", em)
	}
	return nil
}

func readConfig() error {
	SetDefaultConfig()

	data, err := os.ReadFile(ConfigName)
	if err != nil {
		return fmt.Errorf("failed to read config file (%v): %w", ConfigName, err)
	}
	if err := yaml.Unmarshal(data, &Config); err != nil {
		return fmt.Errorf("failed to unmarshal yaml from config file (%v): %w", ConfigName, err)
	}

	if err := assertConfigInvariants(); err != nil {
		return err
	}
	log.Infof("loaded config file %v", ConfigName)
	return nil
}

// delayRequestableSecs normalizes a caller-supplied GetUrls delay: 0
// means "use the configured default" (itself defaulting to 30).
func delayRequestableSecs(requested int) int {
	if requested != 0 {
		return requested
	}
	if Config.Get.DelayRequestableSecs != 0 {
		return Config.Get.DelayRequestableSecs
	}
	return 30
}

// intOrConfigured returns requested, or configured if requested is 0.
// Used by GetUrls to fall back to Config.Get's limits when a caller
// doesn't set MaxQueues/MaxUrlsPerQueue explicitly.
func intOrConfigured(requested, configured int) int {
	if requested != 0 {
		return requested
	}
	return configured
}
