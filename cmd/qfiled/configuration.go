package main

import (
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/BurntSushi/toml"

	"github.com/quicfile/quicfile-go/pkg/fserve"
	"github.com/quicfile/quicfile-go/pkg/provision"
	"github.com/quicfile/quicfile-go/pkg/status"
)

// appName names the directory the self-signed certificate is cached in.
const appName = "quicfile"

// tomlConfig describes the TOML-configuration.
type tomlConfig struct {
	Server  serverConf
	Logging logConf
	Status  statusConf
}

// serverConf describes the Server-configuration block.
type serverConf struct {
	Listen         string
	Root           string
	Cert           string
	Key            string
	StatelessRetry bool   `toml:"stateless-retry"`
	Keylog         string
	RequestTimeout string `toml:"request-timeout"`
	Profiling      bool
}

// logConf describes the Logging-configuration block.
type logConf struct {
	Level        string
	ReportCaller bool `toml:"report-caller"`
	Format       string
}

// statusConf describes the Status-configuration block.
type statusConf struct {
	Listen string
}

// parseServer reads the configuration file and brings up the listener and,
// if configured, the status endpoint.
func parseServer(filename string) (listener *fserve.Listener, agent *status.Agent, profiling bool, err error) {
	var conf tomlConfig
	if _, err = toml.DecodeFile(filename, &conf); err != nil {
		return
	}

	// Logging
	if conf.Logging.Level != "" {
		if lvl, lvlErr := log.ParseLevel(conf.Logging.Level); lvlErr != nil {
			log.WithFields(log.Fields{
				"level":    conf.Logging.Level,
				"error":    lvlErr,
				"provided": "panic,fatal,error,warn,info,debug,trace",
			}).Warn("Failed to set log level. Please select one of the provided ones")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(conf.Logging.ReportCaller)

	switch conf.Logging.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})

	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})

	default:
		log.Warn("Unknown logging format")
	}

	// Certificate
	cert, err := parseCertificate(conf.Server)
	if err != nil {
		return
	}

	var keyLog io.Writer
	if conf.Server.Keylog != "" {
		keyLogFile, keyLogErr := os.OpenFile(conf.Server.Keylog, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if keyLogErr != nil {
			err = fmt.Errorf("opening keylog file: %w", keyLogErr)
			return
		}
		keyLog = keyLogFile
	}

	var requestTimeout time.Duration
	if conf.Server.RequestTimeout != "" {
		if requestTimeout, err = time.ParseDuration(conf.Server.RequestTimeout); err != nil {
			err = fmt.Errorf("parsing request-timeout: %w", err)
			return
		}
	}

	listener, err = fserve.NewListener(fserve.ServerConfig{
		ListenAddress:  conf.Server.Listen,
		Root:           conf.Server.Root,
		Certificate:    cert,
		KeyLog:         keyLog,
		StatelessRetry: conf.Server.StatelessRetry,
		RequestTimeout: requestTimeout,
	})
	if err != nil {
		return
	}

	if err = listener.Start(); err != nil {
		return
	}

	if conf.Status.Listen != "" {
		agent = status.NewAgent(conf.Status.Listen, listener.Metrics())
	}

	profiling = conf.Server.Profiling
	return
}

func parseCertificate(conf serverConf) (cert tls.Certificate, err error) {
	switch {
	case conf.Cert != "" && conf.Key != "":
		return provision.LoadKeyPair(conf.Cert, conf.Key)

	case conf.Cert != "" || conf.Key != "":
		err = fmt.Errorf("cert and key must be given together")
		return

	default:
		return provision.CachedSelfSigned(appName)
	}
}
