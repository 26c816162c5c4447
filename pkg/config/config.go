package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Paths   PathsConfig   `mapstructure:"paths"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Dxm     DxmConfig     `mapstructure:"dxm"`
	Ali     AliConfig     `mapstructure:"ali"`
	Toggles TogglesConfig `mapstructure:"toggles"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// PathsConfig 工作目录配置
type PathsConfig struct {
	PicklistDir string `mapstructure:"picklist_dir"`  // 拣货单（待加购工作簿）目录
	OrderIDsDir string `mapstructure:"order_ids_dir"` // 订单工作簿目录（Mode 2）
	FinishedDir string `mapstructure:"finished_dir"`  // 已完成归档目录
	MappingPath string `mapstructure:"mapping_path"`  // Mapping_Data.xlsx 路径
	ScrapeDir   string `mapstructure:"scrape_dir"`    // 抓取结果输出目录
}

// HTTPConfig HTTP 客户端配置
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// DxmConfig 订单平台（店小秘）配置
type DxmConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	CookieEnv    string        `mapstructure:"cookie_env"`  // Cookie 环境变量名
	CookiePath   string        `mapstructure:"cookie_path"` // Cookie 文本文件路径
	PageSize     int           `mapstructure:"page_size"`   // 平台单次最大批量
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollMaxTries int           `mapstructure:"poll_max_tries"`
}

// AliConfig 货源平台（1688）配置
type AliConfig struct {
	CartURL      string        `mapstructure:"cart_url"`
	RenderURL    string        `mapstructure:"render_url"`
	CookieEnv    string        `mapstructure:"cookie_env"`
	CookiePath   string        `mapstructure:"cookie_path"`
	Warmup       bool          `mapstructure:"warmup"`         // 加购前是否预热 purchaseRender
	PaceMinDelay time.Duration `mapstructure:"pace_min_delay"` // 加购前随机延迟下限
	PaceMaxDelay time.Duration `mapstructure:"pace_max_delay"` // 加购前随机延迟上限
}

// TogglesConfig 行为开关
type TogglesConfig struct {
	DryRun          bool `mapstructure:"dry_run"`
	EnableAudit     bool `mapstructure:"enable_audit"`
	EnableAddToCart bool `mapstructure:"enable_add_to_cart"`
}

// MySQLConfig 运行记录存储配置（可选）
type MySQLConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// RedisConfig 运行完成通知配置（可选）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults 填充缺省值
func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = 20 * time.Second
	}
	if c.Dxm.PageSize <= 0 {
		c.Dxm.PageSize = 300
	}
	if c.Dxm.PollInterval <= 0 {
		c.Dxm.PollInterval = 2 * time.Second
	}
	if c.Dxm.PollMaxTries <= 0 {
		c.Dxm.PollMaxTries = 20
	}
	if c.Dxm.CookieEnv == "" {
		c.Dxm.CookieEnv = "DXM_COOKIE"
	}
	if c.Ali.CookieEnv == "" {
		c.Ali.CookieEnv = "ALI_COOKIE"
	}
	if c.Ali.PaceMinDelay <= 0 {
		c.Ali.PaceMinDelay = 100 * time.Millisecond
	}
	if c.Ali.PaceMaxDelay < c.Ali.PaceMinDelay {
		c.Ali.PaceMaxDelay = 300 * time.Millisecond
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Paths.PicklistDir == "" {
		return fmt.Errorf("paths.picklist_dir is required")
	}
	if c.Dxm.BaseURL == "" {
		return fmt.Errorf("dxm.base_url is required")
	}
	if c.Ali.CartURL == "" {
		return fmt.Errorf("ali.cart_url is required")
	}
	if c.MySQL.Enabled && c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required when mysql.enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis.enabled")
	}
	return nil
}
