package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jingkaihe/skillhub/pkg/app"
	"github.com/jingkaihe/skillhub/pkg/controller"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/pkg/errors"
)

// AgentConfig holds the flags shared by commands that drive the agent
type AgentConfig struct {
	Interactive bool
	Quiet       bool
}

// NewAgentConfig creates a new AgentConfig with default values
func NewAgentConfig() *AgentConfig {
	return &AgentConfig{
		Interactive: false,
		Quiet:       false,
	}
}

// followUpRetryInterval paces resends while the agent has not started yet
var followUpRetryInterval = 50 * time.Millisecond

// forwardFollowUp sends the first non-empty line read from r to the
// running agent. The agent accepts a single answer per run. A line typed
// before the session is up is held until it starts or ctx is done.
func forwardFollowUp(ctx context.Context, r io.Reader, send func(string) error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := sendWhenRunning(ctx, line, send); err != nil {
			logger.G(ctx).WithError(err).Warn("failed to forward input to the agent")
		}
		return
	}
}

func sendWhenRunning(ctx context.Context, line string, send func(string) error) error {
	ticker := time.NewTicker(followUpRetryInterval)
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := send(line)
		if !errors.Is(err, controller.ErrNotRunning) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runAgent runs fn with the terminal presenter as the sink and exits with
// the agent's status code on failure
func runAgent(ctx context.Context, a *app.App, config *AgentConfig, fn func(ctx context.Context) error) {
	presenter.SetQuiet(config.Quiet)

	if config.Interactive {
		fwdCtx, stopForwarding := context.WithCancel(ctx)
		defer stopForwarding()
		go forwardFollowUp(fwdCtx, os.Stdin, a.SendFollowUp)
	}

	err := fn(ctx)
	if closeErr := a.Close(); closeErr != nil {
		logger.G(ctx).WithError(closeErr).Debug("failed to close session")
	}
	if err == nil {
		return
	}

	var exitErr *controller.ExitError
	if errors.As(err, &exitErr) {
		presenter.Error(err, "The agent did not finish successfully")
		if exitErr.Status.Code > 0 {
			os.Exit(exitErr.Status.Code)
		}
		os.Exit(1)
	}

	presenter.Error(err, "Failed to run the agent")
	os.Exit(1)
}
