package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/balance"
	"github.com/tontrade/tontrade/internal/bot"
	"github.com/tontrade/tontrade/internal/chain"
	"github.com/tontrade/tontrade/internal/config"
	"github.com/tontrade/tontrade/internal/dex"
	"github.com/tontrade/tontrade/internal/flow"
	"github.com/tontrade/tontrade/internal/logging"
	"github.com/tontrade/tontrade/internal/market"
	"github.com/tontrade/tontrade/internal/secret"
	"github.com/tontrade/tontrade/internal/store"
)

// sweepInterval is how often expired conversation state is collected.
const sweepInterval = 5 * time.Minute

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func run(parent context.Context) error {
	// .env is optional, real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Environment)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		// The generated key is not persisted: every stored seed
		// becomes unreadable after a restart. Kept as-is pending a
		// product decision, hence the loud warning.
		encryptionKey, err = secret.GenerateKey()
		if err != nil {
			return fmt.Errorf("generating encryption key: %w", err)
		}
		log.Warn("no encryption key configured, generated a temporary one; stored seeds will not survive a restart")
	}

	codec, err := secret.NewCodec(encryptionKey)
	if err != nil {
		return fmt.Errorf("initializing secret codec: %w", err)
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	chainGW := chain.NewClient(cfg.Chain.URL(), cfg.Chain.APIKey)
	marketGW := market.NewClient(cfg.Market.URL, cfg.Market.APIKey)
	dexGW := dex.NewClient(cfg.Dex.URL, cfg.Dex.PTON(cfg.Chain.Testnet))

	assembler := balance.NewAssembler(db, chainGW, marketGW, cfg.TokenFile, log)

	sessions := flow.NewManager(time.Duration(cfg.Session.TTLMinutes) * time.Minute)
	flows := flow.NewController(
		sessions,
		db,
		assembler,
		chainGW,
		dexGW,
		marketGW,
		flow.NewSeedKeyLoader(codec),
		log,
	)

	handler := bot.NewHandler(db, flows, chainGW, assembler, codec, cfg.Greeting, log)

	b, err := bot.New(cfg.BotToken, handler, log)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sessions.SweepLoop(ctx, sweepInterval)

	log.Info("bot started",
		zap.Bool("testnet", cfg.Chain.Testnet),
		zap.String("database", cfg.DatabasePath))

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("bot stopped")
	return nil
}
