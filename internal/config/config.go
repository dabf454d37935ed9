package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 链类型
const (
	ChainTypeEthereum = "ethereum"
	ChainTypeMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// ChainConfig 链与钱包配置
type ChainConfig struct {
	ChainType  string         `mapstructure:"chain_type"`  // 链类型 (ethereum, memory)
	ChainId    int64          `mapstructure:"chain_id"`    // 链ID
	RpcUrl     string         `mapstructure:"rpc_url"`     // RPC节点URL
	PrivateKey string         `mapstructure:"private_key"` // 钱包私钥
	Address    string         `mapstructure:"address"`     // 无私钥时使用的只读账户地址
	TxTimeout  time.Duration  `mapstructure:"tx_timeout"`  // 等待交易确认的超时时间
	Contract   ContractConfig `mapstructure:"contract"`    // 众筹合约配置
}

// ContractConfig 合约配置
type ContractConfig struct {
	Address  string `mapstructure:"address"`   // 合约地址
	ABIPath  string `mapstructure:"abi_path"`  // ABI文件路径，为空时使用内置ABI
	BlockNum int64  `mapstructure:"block_num"` // 合约部署区块号
}

type TaskConfig struct {
	Interval        int   `mapstructure:"interval"`         // 全量同步间隔（秒）
	MonitorInterval int   `mapstructure:"monitor_interval"` // 事件轮询间隔（秒）
	BatchSize       int64 `mapstructure:"batch_size"`       // 每批扫描的区块数
	PoolSize        int   `mapstructure:"pool_size"`        // 事件解析协程池大小
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// Load 从默认路径加载配置
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile 加载配置；path 为空时按默认路径查找 config.yaml
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cfs")
	}

	setDefaults(v)

	// 自动读取环境变量，例如 CHAIN_RPC_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "crowdfunding")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("chain.chain_type", ChainTypeMemory)
	v.SetDefault("chain.chain_id", 1337)
	v.SetDefault("chain.rpc_url", "http://127.0.0.1:8545")
	v.SetDefault("chain.private_key", "")
	v.SetDefault("chain.address", "")
	v.SetDefault("chain.tx_timeout", "2m")
	v.SetDefault("chain.contract.address", "")
	v.SetDefault("chain.contract.abi_path", "")
	v.SetDefault("chain.contract.block_num", 0)
	v.SetDefault("task.interval", 60)
	v.SetDefault("task.monitor_interval", 15)
	v.SetDefault("task.batch_size", 500)
	v.SetDefault("task.pool_size", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Chain.ChainType {
	case ChainTypeMemory:
	case ChainTypeEthereum:
		if c.Chain.RpcUrl == "" {
			return fmt.Errorf("chain.rpc_url is required for chain type %s", c.Chain.ChainType)
		}
		if c.Chain.Contract.Address == "" {
			return fmt.Errorf("chain.contract.address is required for chain type %s", c.Chain.ChainType)
		}
	default:
		return fmt.Errorf("unsupported chain type %q, supported types: %s, %s",
			c.Chain.ChainType, ChainTypeEthereum, ChainTypeMemory)
	}

	if c.Task.Interval < 0 || c.Task.MonitorInterval < 0 {
		return fmt.Errorf("task intervals must not be negative")
	}
	return nil
}
