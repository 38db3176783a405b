package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

type loggerConfig struct {
	LogLevel        string `json:"log_level" yaml:"log_level"`
	IncludeSrc      bool   `json:"include_src" yaml:"include_src"`
	LogToFile       bool   `json:"log_to_file" yaml:"log_to_file"`
	Filename        string `json:"filename" yaml:"filename"`
	MaxSize         int    `json:"max_size" yaml:"max_size"`
	MaxAge          int    `json:"max_age" yaml:"max_age"`
	MaxBackups      int    `json:"max_backups" yaml:"max_backups"`
	CompressOldLogs bool   `json:"compress_old_logs" yaml:"compress_old_logs"`
}

type config struct {
	// Logging configs
	Logging loggerConfig `json:"logging" yaml:"logging"`

	// Evaluator limits
	Evaluator struct {
		MaxDepth int `json:"max_depth" yaml:"max_depth"`
	} `json:"evaluator" yaml:"evaluator"`

	// Interactive loop limits
	REPL struct {
		MaxLineLength int `json:"max_line_length" yaml:"max_line_length"`
	} `json:"repl" yaml:"repl"`
}

func defaultConfig() config {
	var conf config
	conf.Logging.LogLevel = "warn"
	return conf
}

// loadConfig reads the YAML file at path over the defaults. An empty path
// yields the defaults.
func loadConfig(path string) (config, error) {
	conf := defaultConfig()
	if path == "" {
		return conf, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	if err := yaml.UnmarshalStrict(b, &conf); err != nil {
		return conf, err
	}
	return conf, nil
}
