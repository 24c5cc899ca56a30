// Package config carrega os parâmetros de processo do ambiente. Só
// existe o essencial: onde escutar e quanto logar.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config reúne os parâmetros do servidor, lidos com o prefixo CHESSHUB_.
type Config struct {
	Addr     string `envconfig:"ADDR" default:"localhost:8765"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// FromEnv carrega a configuração do ambiente.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("chesshub", &cfg); err != nil {
		return nil, errors.Wrap(err, "load config failed")
	}
	return &cfg, nil
}
