package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/app"
	"github.com/iamvkosarev/lunaris-ai/internal/model"
	"github.com/iamvkosarev/lunaris-ai/internal/thinking"
	"github.com/iamvkosarev/lunaris-ai/internal/usecase"
	"github.com/iamvkosarev/lunaris-ai/pkg/logger"
)

var (
	configPath string
	envFiles   []string

	askModel  string
	askThink  bool
	askSearch bool
	withHTTP  bool
)

var (
	rootCmd = &cobra.Command{
		Use:           "lunaris",
		Short:         "Lunaris AI multi-provider chat orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	botCmd = &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE:  runBot,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP streaming API",
		RunE:  runServe,
	}

	askCmd = &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Stream one answer to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the yaml config")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "Env files to load before reading the config")

	botCmd.Flags().BoolVar(&withHTTP, "http", false, "Also serve the HTTP streaming API")

	askCmd.Flags().StringVarP(&askModel, "model", "m", string(model.ModelLunarisMind), "Model identity")
	askCmd.Flags().BoolVar(&askThink, "think", false, "Enable deep reasoning")
	askCmd.Flags().BoolVar(&askSearch, "search", false, "Enable web search grounding")

	rootCmd.AddCommand(botCmd, serveCmd, askCmd)
}

func setup(ctx context.Context) (*app.App, *slog.Logger, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runBot(cmd *cobra.Command, _ []string) error {
	return runApp(cmd, true, withHTTP)
}

func runServe(cmd *cobra.Command, _ []string) error {
	return runApp(cmd, false, true)
}

func runApp(cmd *cobra.Command, bot, http bool) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	a, log, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to close storage", "error", err)
		}
	}()

	if err = a.Run(ctx, bot, http); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("lunaris stopped")
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	identity, err := model.ParseModelIdentity(askModel)
	if err != nil {
		return err
	}
	a, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	printer := &deltaPrinter{out: out}
	result, err := a.ChatStream.Stream(
		ctx, usecase.StreamRequest{
			Model:      identity,
			NewMessage: strings.Join(args, " "),
			DeepThink:  askThink,
			UseSearch:  askSearch,
			OnChunk: func(text string, _ *model.GroundingMetadata) {
				printer.print(thinking.Parse(text).Answer)
			},
		},
	)
	if err != nil {
		return err
	}
	printer.print(thinking.Parse(result.Text).Answer)
	_, err = fmt.Fprintf(out, "\n\n[%s]\n", result.Model)
	return err
}

// deltaPrinter writes only the part of a prefix-growing text that was not printed yet.
type deltaPrinter struct {
	out     io.Writer
	printed string
}

func (p *deltaPrinter) print(text string) {
	if !strings.HasPrefix(text, p.printed) {
		_, _ = fmt.Fprint(p.out, "\n")
		p.printed = ""
	}
	_, _ = fmt.Fprint(p.out, text[len(p.printed):])
	p.printed = text
}
