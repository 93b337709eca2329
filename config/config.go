package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Export   ExportConfig   `mapstructure:"export"`
	Loader   LoaderConfig   `mapstructure:"loader"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	InitSchema bool   `mapstructure:"init_schema"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	SessionTTLMin int    `mapstructure:"session_ttl_min"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type LoaderConfig struct {
	Encoding string `mapstructure:"encoding"` // utf-8 或 big5
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

const (
	configName = "corphist"
	envPrefix  = "CORPHIST"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "./mydb.sqlite")
	v.SetDefault("database.init_schema", true)
	v.SetDefault("server.addr", ":8501")
	v.SetDefault("server.session_ttl_min", 120)
	v.SetDefault("export.dir", ".")
	v.SetDefault("loader.encoding", "utf-8")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig 讀取設定檔（path 為空時在工作目錄尋找 corphist.yaml）與 CORPHIST_ 開頭的環境變數。
// 找不到設定檔時使用預設值。
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var tempCfg Config
	if err := v.Unmarshal(&tempCfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	mu.Lock()
	cfg = tempCfg
	mu.Unlock()

	return tempCfg, nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
