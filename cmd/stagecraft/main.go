// Command stagecraft runs the full thread-state scenario non-interactively:
// it scripts an actor into every lifecycle state, induces the crossed-lock
// deadlock, samples everything on a cadence, and reports whether each actor
// was observed in its target state.
//
// There are no flags, no environment variables, and no files; narration,
// state tables, and the final report (text, then JSON) go to stdout. The two deadlocked
// actors are intentionally never joined.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"stagecraft/internal/core"
	"stagecraft/internal/director"
	"stagecraft/internal/journal"
	"stagecraft/internal/scenario"
)

const (
	ExitSuccess     = 0
	ExitCheckFailed = 1
	ExitError       = 2
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("received interrupt signal, shutting down")
		cancel()
	}()

	d := director.New(core.RealClock{})
	report, err := d.Run(ctx, scenario.Default())
	if err != nil {
		log.WithError(err).Error("run failed")
		os.Exit(ExitError)
	}

	journal.FormatText(os.Stdout, report)
	fmt.Fprintln(os.Stdout)
	journal.FormatJSON(os.Stdout, report)

	if !report.Checks.Passed {
		fmt.Fprintln(os.Stderr, "\nState checks failed!")
		os.Exit(ExitCheckFailed)
	}
	os.Exit(ExitSuccess)
}
