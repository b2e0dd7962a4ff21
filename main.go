package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ooovooo/qrcard/api"
	"github.com/ooovooo/qrcard/card"
	"github.com/ooovooo/qrcard/config"
	"github.com/ooovooo/qrcard/notify"
	"github.com/ooovooo/qrcard/skins"
	"github.com/ooovooo/qrcard/store"
)

var version = "v0.1.0"

const (
	defaultPayload = "https://ooovooo.com/marcsika"
	defaultSkin    = "skin.png"
	defaultOutput  = "final_qr_card.png"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "qrcard",
		Short:        "Generate skinned QR code cards",
		SilenceUsage: true,
	}

	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	// --- generate command ----------------------------------------------------
	var opts generateOptions
	generateCmd := &cobra.Command{
		Use:   "generate [payload]",
		Short: "Render a QR card under a skin image and save it as PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.payload = defaultPayload
			if len(args) == 1 {
				opts.payload = args[0]
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runGenerate(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts)
		},
	}
	generateCmd.Flags().StringVarP(&opts.skinPath, "skin", "s", defaultSkin, "Path to the skin image")
	generateCmd.Flags().StringVarP(&opts.outputPath, "output", "o", defaultOutput, "Path of the PNG to write")
	generateCmd.Flags().BoolVar(&opts.preview, "preview", false, "Stamp the preview watermark on the card")
	generateCmd.Flags().BoolVar(&opts.record, "record", false, "Record the card in the history database")
	root.AddCommand(generateCmd)

	// --- serve command -------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the card HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	})

	// --- skins command -------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "skins",
		Short: "List skins in the skin library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runSkins(cmd.OutOrStdout(), cfg)
		},
	})

	// --- history command -----------------------------------------------------
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded cards, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runHistory(cmd.OutOrStdout(), cfg, limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of cards to show")
	root.AddCommand(historyCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qrcard %s\n", version)
		},
	})

	return root
}

type generateOptions struct {
	payload    string
	skinPath   string
	outputPath string
	preview    bool
	record     bool
}

// runGenerate renders one card. A missing or unreadable skin is reported on
// errOut and is not an error; every other failure is returned.
func runGenerate(out, errOut io.Writer, cfg *config.Config, opts generateOptions) error {
	log := newLogger(cfg.LogLevel, errOut)

	gen, err := card.NewGenerator(cfg.CardOptions(), log)
	if err != nil {
		return err
	}
	if opts.preview {
		gen = gen.WithWatermark(cfg.Card.Watermark)
	}

	if err := gen.Generate(opts.payload, opts.skinPath, opts.outputPath); err != nil {
		if errors.Is(err, card.ErrMissingSkin) {
			fmt.Fprintf(errOut, "Error: skin file %q was not found or is not a readable image\n", opts.skinPath)
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "Success! Card saved to %s\n", opts.outputPath)

	if opts.record {
		if err := recordCard(cfg, opts); err != nil {
			return fmt.Errorf("record card: %w", err)
		}
	}
	return nil
}

func recordCard(cfg *config.Config, opts generateOptions) error {
	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}
	data, err := os.ReadFile(opts.outputPath)
	if err != nil {
		return err
	}
	cardStore, err := store.NewCardStore(cfg.DBPath())
	if err != nil {
		return err
	}
	defer cardStore.Close()

	sum := sha256.Sum256(data)
	return cardStore.SaveCard(&store.CardRecord{
		ID:         uuid.NewString(),
		Payload:    opts.payload,
		Skin:       opts.skinPath,
		OutputPath: opts.outputPath,
		Preview:    opts.preview,
		Width:      cfg.Card.Size,
		Height:     cfg.Card.Size,
		Checksum:   hex.EncodeToString(sum[:]),
		CreatedAt:  time.Now().Unix(),
	})
}

// runServe is the HTTP service entrypoint that wires all components together.
func runServe(configPath string) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	// 2. Setup logger
	log := newLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)

	log.Info("starting qrcard", "version", version, "port", cfg.Port, "data_dir", cfg.DataDir, "skins_dir", cfg.SkinsDir)

	// 3. Open card store
	cardStore, err := store.NewCardStore(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open card store: %w", err)
	}
	defer cardStore.Close()

	// 4. Create generator
	gen, err := card.NewGenerator(cfg.CardOptions(), log)
	if err != nil {
		return fmt.Errorf("create generator: %w", err)
	}

	// 5. Start HTTP server
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewRouter(&api.Server{
			Generator: gen,
			Skins:     skins.NewLibrary(cfg.SkinsDir),
			Store:     cardStore,
			Webhook:   notify.NewWebhookSender(cfg.WebhookURL, log),
			CardsDir:  cfg.CardsDir(),
			Watermark: cfg.Card.Watermark,
			Log:       log,
			Version:   version,
			StartTime: time.Now(),
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 6. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("goodbye")
	return nil
}

func runSkins(out io.Writer, cfg *config.Config) error {
	list, err := skins.NewLibrary(cfg.SkinsDir).List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(out, "no skins in %s\n", cfg.SkinsDir)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tSIZE\tMODIFIED")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.File, s.Size, s.Modified.Format(time.RFC3339))
	}
	return tw.Flush()
}

func runHistory(out io.Writer, cfg *config.Config, limit int) error {
	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}
	cardStore, err := store.NewCardStore(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open card store: %w", err)
	}
	defer cardStore.Close()

	cards, err := cardStore.ListCards(limit, 0)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Fprintln(out, "no cards recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSKIN\tPREVIEW\tPAYLOAD\tOUTPUT")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			c.ID, time.Unix(c.CreatedAt, 0).Format(time.RFC3339), c.Skin, c.Preview, c.Payload, c.OutputPath)
	}
	return tw.Flush()
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
