// Package main é o ponto de entrada do servidor de xadrez.
package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chesshub/internal/config"
	"chesshub/internal/network"
	"chesshub/internal/session"
)

var (
	logger logrus.FieldLogger = logrus.StandardLogger()

	addr string

	rootCmd = &cobra.Command{
		Use:   "chesshub",
		Short: "Real-time chess matchmaking and session server.",
		RunE:  runServer,
	}
)

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "", "bind address (overrides CHESSHUB_ADDR)")
}

func setupLogging(level string) {
	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = time.RFC3339
	formatter.FullTimestamp = true
	logrus.SetFormatter(formatter)

	switch strings.ToLower(level) {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func runServer(*cobra.Command, []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return errors.Wrap(err, "read environment failed")
	}
	setupLogging(cfg.LogLevel)

	if addr != "" {
		cfg.Addr = addr
	}

	handler := session.NewHandler()
	server := network.NewServer(handler)

	logger.WithField("addr", cfg.Addr).Info("starting chess server")
	return server.Listen(cfg.Addr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatalln(err)
	}
}
