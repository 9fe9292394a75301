package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/vladimirvolkov/tinyfootball/internal/clock"
	"github.com/vladimirvolkov/tinyfootball/internal/config"
	"github.com/vladimirvolkov/tinyfootball/internal/game"
	"github.com/vladimirvolkov/tinyfootball/internal/logging"
	"github.com/vladimirvolkov/tinyfootball/internal/metrics"
	"github.com/vladimirvolkov/tinyfootball/internal/window"
)

// The window stays open this long after the final whistle.
const resultLinger = 3 * time.Second

func main() {
	flags := config.Flags("tinyfootball")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load("", flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		Level:          cfg.LogLevel,
		GraylogEnabled: cfg.Graylog.Enabled,
		GraylogAddress: cfg.Graylog.Address,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("tinyfootball failed")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := metrics.New(nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	clk := clock.NewSystem()
	match := game.NewMatch(game.MatchConfig{
		DurationSecs:  cfg.Match.DurationSeconds,
		EdgeTriggered: cfg.Input.EdgeTriggered,
	}, clk, logger.With().Str("component", "match").Logger())

	var (
		input     game.InputSource = game.IdleInput{}
		renderers game.Renderers
		win       *window.Frontend
	)
	if cfg.Frontend == config.FrontendWindow {
		win = window.New(logger.With().Str("component", "window").Logger())
		input = win
		renderers = append(renderers, win)
	}

	if cfg.Spectator.Enabled {
		spectators := newSpectatorServer(cfg.Spectator, match.ID, rec,
			logger.With().Str("component", "spectators").Logger())
		if err := spectators.Start(); err != nil {
			return err
		}
		defer spectators.Shutdown()
		renderers = append(renderers, game.NewSpectatorRenderer(spectators.hub, logger))
	}

	loop := &game.Loop{
		Match:    match,
		Input:    input,
		Renderer: renderers,
		Clock:    clk,
		TPS:      cfg.Loop.TPS,
		Recorder: rec,
		Log:      logger.With().Str("component", "loop").Logger(),
	}

	if win == nil {
		logger.Info().Str("match", match.ID).Msg("running headless")
		res, ok := loop.Run(ctx)
		report(logger, rec, res, ok)
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		res, ok := loop.Run(ctx)
		report(logger, rec, res, ok)
		if ok {
			clk.Sleep(resultLinger)
		}
		win.Quit()
	}()

	if err := win.Run(); err != nil {
		stop()
		<-done
		return fmt.Errorf("window: %w", err)
	}
	<-done
	return nil
}

func report(logger zerolog.Logger, rec *metrics.Recorder, res game.Result, ok bool) {
	t := rec.Totals()
	ev := logger.Info().
		Int64("frames", t.Frames).
		Int64("overruns", t.Overruns)
	if !ok {
		ev.Msg("match abandoned")
		return
	}
	ev.Str("match", res.MatchID).
		Ints("score", res.Score[:]).
		Msg(res.Message())
}
