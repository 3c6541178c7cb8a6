package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"slopgames/internal/config"
	"slopgames/internal/gamemanager"
	"slopgames/internal/genai"
	"slopgames/internal/generator"
	"slopgames/internal/model"
	"slopgames/internal/storage"

	"github.com/spf13/cobra"
)

// cli holds what every subcommand needs once configuration is loaded.
type cli struct {
	cfg     config.Config
	manager *gamemanager.GameManager
}

func (c *cli) load(cmd *cobra.Command, configFile string) error {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log)

	store, err := storage.NewJSONStore(cfg.CatalogFile, logger)
	if err != nil {
		return fmt.Errorf("initialize catalog store: %w", err)
	}
	artifacts := generator.DefaultGeneratorConfig(cfg.DataDir)
	artifacts.GamesDir = cfg.GamesDir
	artifacts.ThumbnailsDir = cfg.ThumbnailsDir

	c.cfg = cfg
	c.manager = gamemanager.NewManager(store,
		genai.NewTextClient(cfg.GenAI(), logger),
		genai.NewImageClient(cfg.GenAI(), logger),
		artifacts, logger)
	return nil
}

func newRootCmd() *cobra.Command {
	var configFile string
	c := &cli{}

	root := &cobra.Command{
		Use:           "catalog-cli",
		Short:         "Inspect and grow the SLOPGAMES catalog from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd, configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (yaml, toml or json)")
	root.PersistentFlags().String("data-dir", "", "Directory holding the catalog, games and thumbnails")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all games in the catalog, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printGames(cmd.OutOrStdout(), c.manager.Store().List())
				return nil
			},
		},
		newShowCmd(c),
		newCreateCmd(c),
		&cobra.Command{
			Use:   "suggest",
			Short: "Print a fresh batch of title suggestions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printSuggestions(cmd.OutOrStdout(), c.manager.Suggestions(cmd.Context(), 5))
				return nil
			},
		},
	)
	return root
}

func newShowCmd(c *cli) *cobra.Command {
	var open bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one game's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, ok := c.manager.Store().FindByID(args[0])
			if !ok {
				return fmt.Errorf("game %q not found", args[0])
			}
			printGame(cmd.OutOrStdout(), game)
			if open {
				url := fmt.Sprintf("http://localhost:%s/play/%s", c.cfg.Port, game.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", url)
				return openBrowser(url)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "Open the game in a browser (server must be running)")
	return cmd
}

func newCreateCmd(c *cli) *cobra.Command {
	var req model.CreateRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a game and add it to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.Title) == "" {
				return errors.New("--prompt or --title is required")
			}
			if strings.TrimSpace(req.Prompt) == "" {
				req.Prompt = req.Title
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Generating game, this can take a minute...")
			game, err := c.manager.CreateGame(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created game %q with ID %s\n", game.Title, game.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "Description of the game")
	cmd.Flags().StringVar(&req.Type, "type", "", "Genre, e.g. Arcade or Puzzle")
	cmd.Flags().StringVar(&req.Title, "title", "", "Title (optional)")
	cmd.Flags().StringVar(&req.Tags, "tags", "", "Comma separated tags (optional)")
	return cmd
}

func printGames(w io.Writer, games []*model.GameRecord) {
	if len(games) == 0 {
		fmt.Fprintln(w, "No games found.")
		return
	}
	fmt.Fprintf(w, "Found %d games:\n", len(games))
	for _, g := range games {
		fmt.Fprintf(w, "- %s  %s  [%s]\n", g.ID, g.Title, strings.Join(g.Tags, ", "))
	}
}

func printGame(w io.Writer, g *model.GameRecord) {
	thumb := "none"
	if g.Thumbnail != nil {
		thumb = *g.Thumbnail
	}
	fmt.Fprintf(w, "ID: %s\nTitle: %s\nType: %s\nTags: %s\nDate: %s\nThumbnail: %s\nPrompt: %s\n",
		g.ID, g.Title, g.Type, strings.Join(g.Tags, ", "), g.Date.Format("2006-01-02 15:04"), thumb, g.Prompt)
}

func printSuggestions(w io.Writer, suggestions []model.Suggestion) {
	for _, s := range suggestions {
		fmt.Fprintf(w, "- %s  [%s]\n", s.Title, strings.Join(s.Tags, ", "))
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
