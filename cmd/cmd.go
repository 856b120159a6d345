// Package cmd provides the frontierd CLI: a cobra command tree wired
// around frontier.Open/Close and adminhttp.Server, in the same
// library-plus-thin-main shape the original walker cmd package used
// (a separate main package, cmd/frontierd, just calls cmd.Execute()).
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MattiSG/url-frontier"
	"github.com/MattiSG/url-frontier/adminhttp"
	"github.com/MattiSG/url-frontier/kvstore/cassandra"
	"github.com/MattiSG/url-frontier/kvstore/memstore"
)

// config is the path set by the --config flag.
var config string

// backend selects which KVStore implementation serve/recover-check/
// purge open.
var backend string

// dev selects the human-readable development logger over the
// production JSON one.
var dev bool

// adminAddr is the listen address for the admin HTTP server.
var adminAddr string

var rootCommand = &cobra.Command{
	Use:   "frontierd",
	Short: "serve and administer a url-frontier scheduling core",
}

func init() {
	rootCommand.PersistentFlags().StringVarP(&config, "config", "c", "",
		"path to a frontier.yaml config file to load")
	rootCommand.PersistentFlags().StringVarP(&backend, "backend", "b", "memory",
		`KV-store backend to open: "memory" or "cassandra"`)
	rootCommand.PersistentFlags().BoolVar(&dev, "dev", false,
		"use a human-readable development logger instead of the production JSON one")
	rootCommand.AddCommand(serveCommand, schemaCommand, recoverCheckCommand, purgeCommand)

	serveCommand.Flags().StringVarP(&adminAddr, "admin-addr", "a", ":6363",
		"listen address for the admin HTTP server")
}

// Execute runs the command specified on the command line. It blocks
// until the process is asked to shut down (serve) or the requested
// one-shot operation completes (schema, recover-check, purge).
func Execute() {
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfigIfSet() {
	if config == "" {
		return
	}
	if err := frontier.ReadConfigFile(config); err != nil {
		fatalf("failed to read config file %v: %v", config, err)
	}
}

// setUpLogging wires frontier's package-level logger to a real zap
// logger. Without this call frontier logs nothing, which is the right
// default for an importing library but not for the frontierd binary
// itself.
func setUpLogging() {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = frontier.NewDevelopmentLogger()
	} else {
		l, err = frontier.NewProductionLogger()
	}
	if err != nil {
		fatalf("failed to build logger: %v", err)
	}
	frontier.SetLogger(l)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// openStore opens the --backend store against the currently loaded
// config. Every subcommand that touches a store (serve, recover-check,
// purge) goes through this so backend selection and config loading
// stay in one place.
func openStore() frontier.KVStore {
	loadConfigIfSet()
	switch backend {
	case "memory":
		return memstore.New()
	case "cassandra":
		s, err := cassandra.NewStore(frontier.Config)
		if err != nil {
			fatalf("failed to open cassandra store: %v", err)
		}
		return s
	default:
		fatalf("unknown --backend %q (want memory or cassandra)", backend)
		return nil
	}
}

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "open the configured store and serve the admin HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		setUpLogging()
		store := openStore()

		ctx := context.Background()
		f, err := frontier.Open(ctx, store)
		if err != nil {
			fatalf("recovery failed, refusing to serve: %v", err)
		}

		srv := adminhttp.New(f)
		httpServer := &http.Server{Addr: adminAddr, Handler: srv}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fatalf("admin http server failed: %v", err)
			}
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		_ = httpServer.Shutdown(ctx)
		_ = f.Close()
	},
}

var schemaCommand = &cobra.Command{
	Use:   "schema",
	Short: "create the cassandra keyspace and tables if they do not exist",
	Run: func(cmd *cobra.Command, args []string) {
		loadConfigIfSet()
		if err := cassandra.CreateSchema(frontier.Config); err != nil {
			fatalf("failed to create schema: %v", err)
		}
	},
}

// recoverCheckCommand opens the configured store, which runs the same
// reconciliation frontier.Open always runs at startup, and reports the
// outcome without serving anything. Useful as a pre-flight check
// (deploy tooling, a liveness probe before a rolling restart) that
// wants to know recovery will succeed before traffic is cut over.
var recoverCheckCommand = &cobra.Command{
	Use:   "recover-check",
	Short: "open the configured store, run recovery, and report success or failure",
	Run: func(cmd *cobra.Command, args []string) {
		setUpLogging()
		store := openStore()

		f, err := frontier.Open(context.Background(), store)
		if err != nil {
			_ = store.Close()
			fatalf("recovery failed: %v", err)
		}
		_ = f.Close()
		fmt.Println("recovery check passed")
	},
}

// purgeCommand wipes the configured store in place, via
// frontier.Purger, without requiring store.purge to be set in config.
// Useful for resetting a test or staging environment between runs.
var purgeCommand = &cobra.Command{
	Use:   "purge",
	Short: "wipe all data from the configured store",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer func() { _ = store.Close() }()

		purger, ok := store.(frontier.Purger)
		if !ok {
			fatalf("--backend %q does not support purge", backend)
		}
		if err := purger.Purge(context.Background()); err != nil {
			fatalf("purge failed: %v", err)
		}
		fmt.Println("purge complete")
	},
}
