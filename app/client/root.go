package main

import (
	"context"
	"fmt"
	"github.com/ribgsilva/note-sync/app/client/config"
	"github.com/ribgsilva/note-sync/client/v1/engine"
	"github.com/ribgsilva/note-sync/client/v1/remote"
	"github.com/ribgsilva/note-sync/client/v1/store"
	"github.com/ribgsilva/note-sync/client/v1/viewmodel"
	"github.com/ribgsilva/note-sync/platform/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"os"
	"time"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Offline capable notes client",
	Long: `notes keeps your notes in a local database and reconciles them with the
notes server whenever it is reachable.`,
	SilenceUsage: true,
}

// Execute runs the root command; called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./notes-client.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log sync activity to stderr")
}

// session wires the client components for one command run
type session struct {
	log    *zap.SugaredLogger
	cfg    config.Config
	local  *store.Store
	remote *remote.Client
	engine *engine.Engine
	model  *viewmodel.Model
}

func open(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop().Sugar()
	if verbose {
		if log, err = logger.New("Notes-Client", "stderr"); err != nil {
			return nil, err
		}
	}

	local, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	rc := remote.New(cfg.ServerURL, cfg.RequestTimeout)
	e := engine.New(engine.Config{
		Log:               log,
		Local:             local,
		Remote:            rc,
		ReconnectBase:     cfg.ReconnectBase,
		ReconnectAttempts: cfg.ReconnectAttempts,
		EchoWindow:        cfg.EchoWindow,
		PollInterval:      cfg.PollInterval,
	})

	return &session{
		log:    log,
		cfg:    cfg,
		local:  local,
		remote: rc,
		engine: e,
		model:  viewmodel.New(log, e, local),
	}, nil
}

// connect moves the engine online when the server answers its healthcheck
func (s *session) connect(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	if err := s.remote.Ping(pctx); err != nil {
		s.log.Infow("connect", "status", "server unreachable, working offline", "ERROR", err)
		return false
	}
	s.engine.NetworkOnline()
	return true
}

// settle waits for a pass when online, so the command output reflects the server
func (s *session) settle(ctx context.Context) {
	if s.engine.State() == engine.Offline {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, 3*s.cfg.RequestTimeout)
	defer cancel()
	if err := s.engine.Sync(sctx); err != nil {
		s.log.Infow("sync", "status", "pass failed", "ERROR", err)
	}
}

func (s *session) close() {
	s.model.Close()
	s.engine.Close()
	if err := s.local.Close(); err != nil {
		s.log.Errorw("close", "ERROR", err)
	}
	_ = s.log.Sync()
}

func printNotes(notes []store.Note) {
	if len(notes) == 0 {
		fmt.Println("no notes")
		return
	}
	for _, n := range notes {
		printNote(n)
	}
}

func printNote(n store.Note) {
	marker := ""
	switch {
	case n.Provisional():
		marker = " (not on server yet)"
	case n.SyncStatus == store.Pending:
		marker = " (syncing)"
	case n.SyncStatus == store.Failed:
		marker = " (sync failed)"
	}
	fmt.Printf("%d\t%s\t%s%s\n", n.Id, n.UpdatedAt.Local().Format(time.DateTime), n.Title, marker)
}
