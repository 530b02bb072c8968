package config

import (
	"encoding/json"
	"os"

	"github.com/tenantive/jobboard/internal/flagx"
	"github.com/tenantive/jobboard/internal/timex"
)

// JsonConfig is the DTO for the JSON configuration file. Durations accept
// both strings ("10s") and integer nanoseconds via timex.Duration; after
// unmarshalling the values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	AdminDatabaseDSN string         `json:"admin_database_dsn"`
	SecretKey        string         `json:"secret_key"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	Debug            bool           `json:"debug"`
}

// parseJson overlays values from the JSON file named by the -c/-config
// flags, if any. An unreadable or invalid file panics: a config file that
// was asked for but cannot be used is not a state to start in.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.AdminDatabaseDSN = c.AdminDatabaseDSN
	config.SecretKey = c.SecretKey
	config.ShutdownTimeout = c.ShutdownTimeout.Std()
	config.Debug = c.Debug
}
