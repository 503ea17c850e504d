package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"FilmCatalog/internal/app"
	"FilmCatalog/internal/config"
	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/logging"
)

type cli struct {
	configPath string
	logLevel   string
	app        *app.Application
}

// newRootCommand builds the command tree; the returned func closes the
// application opened by whichever command ran.
func newRootCommand() (*cobra.Command, func() error) {
	c := &cli{}
	root := &cobra.Command{
		Use:           "filmcatalog",
		Short:         "Keep a local catalog of films parsed from video playlists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (YAML or TOML)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override logging level")

	root.AddCommand(
		c.addCommand(),
		c.updateCommand(),
		c.categoriesCommand(),
		c.filmsCommand(),
		c.thresholdCommand(),
		c.menuCommand(),
		c.watchCommand(),
	)
	return root, c.close
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func (c *cli) open(cmd *cobra.Command) error {
	if skipsCatalog(cmd) {
		return nil
	}
	if c.configPath != "" {
		if err := os.Setenv("FILMCATALOG_CONFIG", c.configPath); err != nil {
			return err
		}
	}
	cfg := config.Load()
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	logger := logging.NewWithFormat(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c.app = application
	return nil
}

func skipsCatalog(cmd *cobra.Command) bool {
	for cur := cmd; cur != nil; cur = cur.Parent() {
		if cur.Name() == "help" || cur.Name() == "completion" {
			return true
		}
	}
	return false
}

func (c *cli) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME URL",
		Short: "Register a category and parse its playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			progress := newProgressReporter(cmd.ErrOrStderr(), "parsing "+args[0], c.app.Logger())
			result, err := c.app.Catalog().AddCategory(ctx, args[0], args[1], progress.Report)
			progress.Finish()
			if registered(err) {
				if menuErr := c.app.Menu().AddCategory(ctx, strings.TrimSpace(args[0])); menuErr != nil {
					c.app.Logger().Warn("menu update failed", "category", args[0], "error", menuErr)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d added, %d replaced\n", args[0], result.Added, result.Replaced)
			return nil
		},
	}
}

// registered reports whether an add left the category in the catalog: a parse
// failure still registers it, any other error does not.
func registered(err error) bool {
	var parseErr *domain.ParseError
	return err == nil || errors.As(err, &parseErr)
}

func (c *cli) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update NAME",
		Short: "Re-parse a registered category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := newProgressReporter(cmd.ErrOrStderr(), "updating "+args[0], c.app.Logger())
			result, err := c.app.Catalog().UpdateCategory(cmd.Context(), args[0], progress.Report)
			progress.Finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d added, %d replaced\n", args[0], result.Added, result.Replaced)
			return nil
		},
	}
}

func (c *cli) categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List registered categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			categories, err := c.app.Catalog().GetAllCategories(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(categories))
			for _, cat := range categories {
				films, err := c.app.Catalog().GetFilmsByCategory(ctx, cat.Name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					cat.Name,
					cat.URL,
					strconv.FormatFloat(cat.Threshold, 'f', -1, 64),
					strconv.Itoa(len(films)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "URL", "Threshold", "Films"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func (c *cli) filmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "films NAME",
		Short: "List films stored for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, ok, err := c.app.Catalog().GetCategory(ctx, args[0]); err != nil {
				return err
			} else if !ok {
				return domain.NewCategoryNotFound(args[0])
			}
			films, err := c.app.Catalog().GetFilmsByCategory(ctx, args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(films))
			for _, f := range films {
				rows = append(rows, []string{f.ID, f.Title, f.URL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "URL"}, rows, nil))
			return nil
		},
	}
}

func (c *cli) thresholdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "threshold NAME VALUE",
		Short: "Set the rating threshold of a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("threshold %q: %w", args[1], domain.ErrInvalidInput)
			}
			return c.app.Catalog().UpdateThreshold(cmd.Context(), args[0], value)
		},
	}
}

func (c *cli) menuCommand() *cobra.Command {
	menu := &cobra.Command{
		Use:   "menu",
		Short: "Inspect and edit the category selection menu",
	}

	menu.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show menu entries and the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			active := c.app.Menu().ActiveCategory()
			rows := [][]string{}
			for _, name := range c.app.Menu().Categories() {
				marker := ""
				if name == active {
					marker = "*"
				}
				rows = append(rows, []string{marker, name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"", "Category"}, rows, nil))
			return nil
		},
	})

	menu.AddCommand(&cobra.Command{
		Use:   "select NAME",
		Short: "Make NAME the active entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Menu().SetActiveCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			if c.app.Menu().ActiveCategory() != args[0] {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s is not in the menu\n", args[0])
			}
			return nil
		},
	})

	menu.AddCommand(&cobra.Command{
		Use:   "remove NAME",
		Short: "Drop NAME from the menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Menu().RemoveCategory(cmd.Context(), args[0])
		},
	})

	menu.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Report names known only to the menu or only to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			div, err := c.app.MenuDivergence(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if div.Empty() {
				fmt.Fprintln(out, "menu and catalog agree")
				return nil
			}
			rows := [][]string{}
			for _, n := range div.OnlyInMenu {
				rows = append(rows, []string{n, "menu only"})
			}
			for _, n := range div.OnlyInCatalog {
				rows = append(rows, []string{n, "catalog only"})
			}
			fmt.Fprintln(out, renderTable([]string{"Category", "Where"}, rows, nil))
			return nil
		},
	})

	return menu
}

func (c *cli) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh every category periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context())
		},
	}
}
