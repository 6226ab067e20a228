package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Match  MatchConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

// RedisConfig 共享暫存庫的連線設定
// Addr 留空時使用行程內記憶體實作（僅適用於單一實例部署）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MatchConfig 配對活動的每日時程與會話參數
type MatchConfig struct {
	OpenTime       string // 開放加入的時刻，格式 "HH:MM"
	StartTime      string // 執行配對的時刻
	CloseTime      string // 關閉階段的時刻
	SessionMinutes int    // 每場會話的持續時間（分鐘）
	MarkTTLHours   int    // 每日參與標記的存活時間（小時）
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	viper.SetDefault("match.opentime", "22:00")
	viper.SetDefault("match.starttime", "23:00")
	viper.SetDefault("match.closetime", "23:30")
	viper.SetDefault("match.sessionminutes", 5)
	viper.SetDefault("match.markttlhours", 18)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
