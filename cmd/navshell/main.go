package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mchmarny/navshell/pkg/app"
	"github.com/mchmarny/navshell/pkg/layout"
	"github.com/mchmarny/navshell/pkg/logger"
	"github.com/mchmarny/navshell/pkg/menu"
	"github.com/mchmarny/navshell/pkg/server"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "navshell",
		Short:         "Serve a menu as a server-rendered application shell",
		Version:       app.Version(),
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetDefaultLogger("navshell", app.Version())
		},
	}

	root.AddCommand(newServeCmd(), newResolveCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		port         int
		menuFile     string
		settingsFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the shell HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := loadMenu(menuFile)
			if err != nil {
				return err
			}

			settings := layout.DefaultSettings()
			if settingsFile != "" {
				if settings, err = layout.LoadSettings(settingsFile); err != nil {
					return err
				}
			}

			a, err := app.New(m, settings, server.WithPort(port))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", server.DefaultPort, "Port to run the server on")
	cmd.Flags().StringVar(&menuFile, "menu", "", "YAML menu file (built-in demo menu when empty)")
	cmd.Flags().StringVar(&settingsFile, "settings", "", "YAML layout settings file")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var (
		menuFile string
		path     string
		prefix   bool
		leaf     bool
		single   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the open keys, selected keys and breadcrumbs for a route",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := loadMenu(menuFile)
			if err != nil {
				return err
			}

			res, err := menu.NewResolver(m.Items)
			if err != nil {
				return err
			}

			var opts []menu.ResolveOption
			if prefix {
				opts = append(opts, menu.WithMatch(menu.MatchPrefix))
			}
			if leaf {
				opts = append(opts, menu.WithLeaf())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m.State(res, path, single, opts...))
		},
	}

	cmd.Flags().StringVar(&menuFile, "menu", "", "YAML menu file (built-in demo menu when empty)")
	cmd.Flags().StringVar(&path, "path", "/", "Route to resolve")
	cmd.Flags().BoolVar(&prefix, "prefix", false, "Match item paths as route prefixes")
	cmd.Flags().BoolVar(&leaf, "leaf", false, "Include the matched item in the open keys")
	cmd.Flags().BoolVar(&single, "single", false, "Keep at most one top-level section open")
	return cmd
}

func loadMenu(file string) (*menu.Menu, error) {
	if file != "" {
		return menu.Load(file)
	}

	m := demoMenu()
	if err := m.Normalize(); err != nil {
		return nil, err
	}
	return m, nil
}

// demoMenu is served when no menu file is given.
func demoMenu() *menu.Menu {
	return &menu.Menu{
		Title:       fmt.Sprintf("Navshell (%s)", app.Version()),
		Description: "Demo application shell",
		Version:     app.Version(),
		Items: []menu.Item{
			{Name: "Dashboard", Path: "/dashboard", Icon: "dashboard", Children: []menu.Item{
				{Name: "Analysis", Path: "analysis"},
				{Name: "Monitor", Path: "monitor"},
			}},
			{Name: "List", Path: "/list", Icon: "table", Children: []menu.Item{
				{Name: "Search", Path: "search", Children: []menu.Item{
					{Name: "Articles", Path: "articles"},
					{Name: "Projects", Path: "projects"},
				}},
				{Name: "Table", Path: "table"},
			}},
			{Name: "Status", Path: "/status", Icon: "heart-pulse", Handler: status()},
			{Name: "Docs", Path: "https://pkg.go.dev/maragu.dev/gomponents", Icon: "book"},
		},
	}
}

// status returns a handler that responds with request information.
func status() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("handling", "method", r.Method, "url", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": app.Version(),
		}); err != nil {
			slog.Error("failed to write status", "error", err)
		}
	})
}
