package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Fabric Fabric `yaml:"fabric"`
	Mail   Mail   `yaml:"mail"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	DatasetLink   string `yaml:"datasetLink"` // public URL prefix used in citations
}

type Fabric struct {
	Channel          string        `yaml:"channel"`
	Chaincode        string        `yaml:"chaincode"`
	WalletPath       string        `yaml:"walletPath"`
	ConfigPath       string        `yaml:"configPath"` // holds connection-profiles/ and certs/
	DefaultOrg       int           `yaml:"defaultOrg"`
	Timeout          time.Duration `yaml:"timeout"`
	CacheIntervalMin int           `yaml:"cacheIntervalMin"`
}

type Mail struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	From         string `yaml:"from"`
	TemplatePath string `yaml:"templatePath"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Fabric.Channel == "" || config.Fabric.Chaincode == "" {
		return Config{}, fmt.Errorf("fabric channel and chaincode are required")
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}
	if config.Fabric.Timeout == 0 {
		config.Fabric.Timeout = 30 * time.Second
	}
	if config.Fabric.CacheIntervalMin == 0 {
		config.Fabric.CacheIntervalMin = 10
	}

	return config, nil
}
