// Command circuitd runs the Circuit engine as a standalone JSON-RPC
// service, grounded on the teacher's vms/example/xsvm/cmd/xsvm root
// command: a single cobra command that loads config, wires collaborators,
// and serves HTTP until interrupted.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/t3rn/circuit/api"
	"github.com/t3rn/circuit/bonding"
	"github.com/t3rn/circuit/config"
	"github.com/t3rn/circuit/executor"
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/logging"
	"github.com/t3rn/circuit/metrics"
	"github.com/t3rn/circuit/signalqueue"
	"github.com/t3rn/circuit/state"
	"github.com/t3rn/circuit/validator"
	"github.com/t3rn/circuit/xtx"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func main() {
	cmd := rootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "circuitd: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "circuitd",
		Short: "Run the Circuit Xtx lifecycle engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("self-account-id", "", "account id this node signs as (required)")
	flags.String("self-gateway-id", "circ", "this node's own 4-byte gateway id")
	flags.Uint32("self-para-id", 0, "this node's parachain id, if any")
	flags.Uint64("xtx-timeout-default", 400, "default Xtx timeout, in blocks")
	flags.Uint64("xtx-timeout-check-interval", 10, "timeout sweep interval, in blocks")
	flags.Uint32("deletion-queue-limit", 100, "deletion queue limit (loaded into config; the sweep reverts at most one Xtx per tick regardless)")
	flags.Uint32("signal-queue-depth", 1000, "max pending control signals")
	flags.Int("store-cache-size", 2048, "store cache size (loaded into config; the in-memory store does not use it)")
	flags.String("http-addr", ":9650", "bind address for the JSON-RPC + health API")

	for _, key := range []string{
		config.KeySelfAccountID, config.KeySelfGatewayID, config.KeySelfParaID,
		config.KeyXtxTimeoutDefault, config.KeyXtxTimeoutCheckInterval,
		config.KeyDeletionQueueLimit, config.KeySignalQueueDepth,
		config.KeyStoreCacheSize, config.KeyHTTPAddr,
	} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	v.AutomaticEnv()

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, err := logging.NewZap(zapcore.InfoLevel)
	if err != nil {
		return err
	}

	m, err := metrics.New("circuit", prometheusDefaultRegisterer())
	if err != nil {
		return err
	}

	store := state.NewMemStore()
	signals := signalqueue.New(cfg.SignalQueueDepth)

	accounts := newDevAccountManager(map[xtx.Account]uint64{
		xtx.Account(cfg.SelfAccountID): 1_000_000_000,
	})

	engine := &executor.Engine{
		Store: store,
		Validator: validator.Backend{
			NameService: devNameService{},
			Protocol:    devProtocol{},
			Portal:      devPortal{},
			Hasher:      ids.DefaultHasher,
			SelfGateway: cfg.SelfGatewayID,
		},
		Bonding:     bonding.Backend{AccountManager: accounts},
		Accounts:    accounts,
		Bus:         newDevAsyncBus(),
		Portal:      devPortal{},
		NameService: devNameService{},
		Protocol:    devProtocol{},
		Executors:   devExecutorRegistry{},
		Signals:     signals,
		Metrics:     m,
		Log:         log,
		Tracer:      otel.Tracer("circuit/executor"),
		Hasher:      ids.DefaultHasher,
		Config:      cfg,
		Now:         newBlockClock(),
		NewXtxID:    randomXtxID,
	}

	handler, err := api.NewHandler(engine, log, map[string]api.Checker{
		"store": storeChecker{},
	})
	if err != nil {
		return err
	}

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: handler}
	go runSweeps(ctx, engine, cfg, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	log.Info("circuitd listening", zap.String("addr", cfg.HTTPAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-sigCh:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
	return nil
}

// newBlockClock simulates block production with a one-second ticker, the
// simplest possible stand-in for a real consensus engine's accepted-block
// height: good enough to let the timeout sweep and the signal queue make
// progress in a standalone deployment.
func newBlockClock() func() xtx.BlockNumber {
	var height uint64 = 1
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			atomic.AddUint64(&height, 1)
		}
	}()
	return func() xtx.BlockNumber {
		return xtx.BlockNumber(atomic.LoadUint64(&height))
	}
}

func runSweeps(ctx context.Context, e *executor.Engine, cfg config.Config, log logging.Logger) {
	interval := time.Duration(cfg.XtxTimeoutCheckInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.SweepTimeouts(ctx); err != nil {
				log.Warn("timeout sweep failed", zap.Error(err))
			}
			e.ProcessSignalQueue(ctx)
		}
	}
}

func randomXtxID() ids.Id {
	var id ids.Id
	_, _ = rand.Read(id[:])
	return id
}
