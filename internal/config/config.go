package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server ServerConfig `mapstructure:"server"` // 服务器配置
	SQLite SQLiteConfig `mapstructure:"sqlite"` // SQLite数据库配置
	Import ImportConfig `mapstructure:"import"` // 数据导入配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// SQLiteConfig SQLite数据库配置
type SQLiteConfig struct {
	Path            string        `mapstructure:"path"`              // 数据库文件路径
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// ImportConfig 数据导入配置
type ImportConfig struct {
	DataDir         string `mapstructure:"data_dir"`          // CSV 数据目录（按年份分子目录）
	ErrorPreviewCap int    `mapstructure:"error_preview_cap"` // 汇总展示的错误条数上限，超出部分折叠为"+N more"
}

// LoadConfig 加载配置文件（config/config.yaml），运维项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 运维字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖可部署时调整的配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("LOTTO_DB_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
	if v := os.Getenv("LOTTO_DATA_DIR"); v != "" {
		cfg.Import.DataDir = v
	}
	if v := os.Getenv("LOTTO_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

// applyDefaults 兜底默认值（config.yaml 缺项时可直接启动）
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "lottery.db"
	}
	if cfg.Import.DataDir == "" {
		cfg.Import.DataDir = "lottery_data"
	}
	if cfg.Import.ErrorPreviewCap <= 0 {
		cfg.Import.ErrorPreviewCap = 10
	}
}
