package config

import (
	"encoding/json"
	"errors"
	"os"
)

const (
	StorageFile  = "file"
	StorageMongo = "mongo"
)

type Config struct {
	Database struct {
		Host               string `json:"host"`
		Port               uint64 `json:"port"`
		Username           string `json:"username"`
		Password           string `json:"password"`
		Database           string `json:"database"`
		UseTLS             bool   `json:"use_tls"`
		ConnectTimeout     string `json:"connect_timeout"`
		SocketTimeout      string `json:"socket_timeout"`
		ConnectIdleTimeout string `json:"connect_idle_timeout"`
		OperationTimeout   string `json:"operation_timeout"`
		Heartbeat          string `json:"heartbeat"`
		MinPoolSize        uint64 `json:"min_pool_size"`
		MaxPoolSize        uint64 `json:"max_pool_size"`
	} `json:"database"`
	DebugMode         bool   `json:"debug_mode"`
	AppName           string `json:"app_name"`
	AppPort           int    `json:"app_port"`
	AdminLogin        string `json:"admin_login"`
	Storage           string `json:"storage"`
	DBPath            string `json:"db_path"`
	SyncInterval      string `json:"sync_interval"`
	SilenceTimeout    string `json:"silence_timeout"`
	HaltInterval      string `json:"halt_interval"`
	RateLimitInterval string `json:"rate_limit_interval"`
}

var config Config
var initialized = false

func defaultConfig() Config {
	var c Config
	c.AppName = "pichat-server"
	c.AppPort = 8081
	c.AdminLogin = "admin"
	c.Storage = StorageFile
	c.DBPath = "clients.json"
	c.SyncInterval = "1200ms"
	c.SilenceTimeout = "300s"
	c.HaltInterval = "100ms"
	c.RateLimitInterval = "500ms"
	return c
}

func ReadConfig() (Config, error) {
	bytes, err := os.ReadFile("config.json")

	if err != nil {
		config = defaultConfig()
		writer, _ := os.OpenFile("config.json", os.O_WRONLY|os.O_CREATE, 0777)
		data, _ := json.MarshalIndent(config, "", "\t")
		_, _ = writer.Write(data)
		_ = writer.Close()
		return config, errors.New("the configuration file does not exist and has been created. Please try again after editing the configuration file")
	}

	err = json.Unmarshal(bytes, &config)

	if err != nil {
		return config, errors.New("the configuration file does not contain valid JSON")
	}

	initialized = true
	return config, nil
}

func GetConfig() (Config, error) {
	if initialized {
		return config, nil
	}
	return ReadConfig()
}
