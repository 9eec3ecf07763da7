package main

import (
	"fmt"
	"strings"
	"time"

	"questlog/internal/repository"
	"questlog/internal/service"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	TelegramAuth TelegramAuthConfig `yaml:"telegramAuth"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	Progression   ProgressionConfig   `yaml:"progression"`
	Leaderboard   LeaderboardConfig   `yaml:"leaderboard"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramAuthConfig struct {
	TelegramBotToken string `yaml:"telegramBotToken"`
	DebugMode        bool   `yaml:"debugMode"`
}

type ProgressionConfig struct {
	ActiveQuestCap int           `yaml:"activeQuestCap"`
	Paths          []string      `yaml:"paths"`
	Timezone       string        `yaml:"timezone"`
	Workout        WorkoutConfig `yaml:"workout"`
}

type WorkoutConfig struct {
	BaseXP      int `yaml:"baseXP"`
	WalkBonusXP int `yaml:"walkBonusXP"`
	RunBonusXP  int `yaml:"runBonusXP"`
}

type LeaderboardConfig struct {
	AllowBrowse bool `yaml:"allowBrowse"`
}

type NotificationsConfig struct {
	Telegram bool `yaml:"telegram"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "json")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("progression.activeQuestCap", 3)
	viper.SetDefault("progression.timezone", "UTC")
	viper.SetDefault("progression.workout.baseXP", service.DefaultWorkoutPolicy.BaseXP)
	viper.SetDefault("progression.workout.walkBonusXP", service.DefaultWorkoutPolicy.WalkBonusXP)
	viper.SetDefault("progression.workout.runBonusXP", service.DefaultWorkoutPolicy.RunBonusXP)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Settings() (service.Settings, error) {
	loc, err := time.LoadLocation(c.Progression.Timezone)
	if err != nil {
		return service.Settings{}, fmt.Errorf("invalid progression.timezone %q: %w", c.Progression.Timezone, err)
	}

	paths := make([]string, 0, len(c.Progression.Paths))
	for _, p := range c.Progression.Paths {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			paths = append(paths, p)
		}
	}

	return service.Settings{
		ActiveQuestCap: c.Progression.ActiveQuestCap,
		Paths:          paths,
		Location:       loc,
		Workout: service.WorkoutPolicy{
			BaseXP:      c.Progression.Workout.BaseXP,
			WalkBonusXP: c.Progression.Workout.WalkBonusXP,
			RunBonusXP:  c.Progression.Workout.RunBonusXP,
		},
		AllowBrowse: c.Leaderboard.AllowBrowse,
	}, nil
}
