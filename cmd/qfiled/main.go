package main

import (
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/profile"
)

// waitSigint blocks the current thread until a SIGINT appears.
func waitSigint() {
	signalSyn := make(chan os.Signal, 1)
	signalAck := make(chan struct{})

	signal.Notify(signalSyn, os.Interrupt)

	go func() {
		<-signalSyn
		close(signalAck)
	}()

	<-signalAck
}

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("Usage: %s configuration.toml", os.Args[0])
	}

	listener, agent, profiling, err := parseServer(os.Args[1])
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Fatal("Failed to parse config")
	}

	if profiling {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	waitSigint()
	log.Info("Shutting down..")

	var closeErr *multierror.Error
	closeErr = multierror.Append(closeErr, listener.Close())

	if agent != nil {
		closeErr = multierror.Append(closeErr, agent.Close())
	}

	if err := closeErr.ErrorOrNil(); err != nil {
		log.WithError(err).Error("Shutdown finished with errors")
	}
}
