package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration: where the backend lives and which
// room to enter. Every field can be overridden from the environment.
type Config struct {
	Backend struct {
		// URL is the REST base URL; localhost matches the backend's dev
		// default.
		URL string `yaml:"url"`
		// PushURL is the websocket endpoint for the push channel.
		PushURL string `yaml:"push_url"`
	} `yaml:"backend"`

	Room struct {
		Code     string `yaml:"code"`
		Username string `yaml:"username"`
		Team     string `yaml:"team"`
		Role     string `yaml:"role"`
		// Create makes the room instead of joining it.
		Create bool `yaml:"create"`
	} `yaml:"room"`
}

func defaultConfig() *Config {
	var config Config
	config.Backend.URL = "http://localhost:5000"
	config.Backend.PushURL = "ws://localhost:5000/ws"
	config.Room.Team = "Red"
	config.Room.Role = "Agent"
	return &config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Backend.URL = getEnv("CODENAMES_BACKEND_URL", config.Backend.URL)
	config.Backend.PushURL = getEnv("CODENAMES_PUSH_URL", config.Backend.PushURL)
	config.Room.Code = getEnv("CODENAMES_ROOM", config.Room.Code)
	config.Room.Username = getEnv("CODENAMES_USERNAME", config.Room.Username)
	config.Room.Team = getEnv("CODENAMES_TEAM", config.Room.Team)
	config.Room.Role = getEnv("CODENAMES_ROLE", config.Room.Role)
	config.Room.Create = getEnvAsBool("CODENAMES_CREATE", config.Room.Create)

	if config.Room.Code == "" || config.Room.Username == "" {
		return nil, fmt.Errorf("room code and username are required (CODENAMES_ROOM, CODENAMES_USERNAME)")
	}
	return config, nil
}
