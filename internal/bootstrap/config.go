package bootstrap

import (
	"os"

	"github.com/Domenick1991/carrental/config"
	"go.uber.org/fx"
)

const defaultConfigPath = "config.yaml"

var ConfigModule = fx.Module("config",
	fx.Provide(
		LoadConfig,
	),
)

// LoadConfig reads the file named by CONFIG_PATH, falling back to config.yaml.
func LoadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return config.LoadConfig(path)
}
