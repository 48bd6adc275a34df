package cmd

import (
	"io"
	"os"

	"github.com/vibast-solutions/ms-go-idmatch/config"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(newLogFormatter(cfg.LogFormat, os.Stderr))
	return nil
}

func newLogFormatter(format string, out io.Writer) logrus.Formatter {
	switch format {
	case "json":
		return &logrus.JSONFormatter{}
	case "text":
		return &logrus.TextFormatter{FullTimestamp: true, DisableColors: !isTerminal(out)}
	}
	if isTerminal(out) {
		return &logrus.TextFormatter{FullTimestamp: true, ForceColors: true}
	}
	return &logrus.JSONFormatter{}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
