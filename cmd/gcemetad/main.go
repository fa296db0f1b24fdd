package main

import (
	"flag"
	"os"
	"os/signal"

	"github.com/google/gops/agent"
	"github.com/nicolagi/gcemetad/metadata"
	"github.com/nicolagi/gcemetad/metadata/server"
	"github.com/nicolagi/gcemetad/tool"
	log "github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", os.ExpandEnv("$HOME/lib/gcemetad/config"), "location of configuration file")
	flag.Parse()

	opts, err := loadConfig(*configFile)
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"path": *configFile,
		}).Fatal("Could not load configuration")
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if err := agent.Listen(agent.Options{
		ShutdownCleanup: true,
	}); err != nil {
		log.WithField("err", err).Warn("Could not start gops agent")
	} else {
		defer agent.Close()
	}

	runner := tool.NewShellRunner(
		// The tool misdetects the terminal capabilities without this.
		tool.WithEnv("TERM=vt-100"),
		tool.WithTimeout(opts.commandTimeout()),
	)

	srv := server.New(
		server.WithAddress(opts.listenAddress()),
		server.WithEntries(metadata.Entries(opts.TokenCommand, opts.ProjectCommand)),
		server.WithRunner(runner),
	)
	addr, err := srv.Listen()
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{"addr": addr}).Info("Listening")

	// Before we call srv.Serve(), which never returns unless
	// srv.Shutdown() is called, we need to install a signal handler to
	// call srv.Shutdown().
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		sig := <-c
		log.WithField("signal", sig).Info("Shutting down server")
		if err := srv.Shutdown(); err != nil {
			log.WithFields(log.Fields{"err": err}).Warn("Could not shut down the server cleanly")
		}
	}()

	if err := srv.Serve(); err != nil {
		log.Error(err)
	}
}
