package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v3"

	"usersearch/internal/app"
	"usersearch/internal/platform/config"
	"usersearch/internal/platform/logger"
	"usersearch/internal/search/handler"
	id "usersearch/pkg/domain"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run one search and print the result as JSON",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "by", Usage: "Field or mode to search (username, fullname, nickname, ip, uid, ...)"},
			&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
			&cli.IntFlag{Name: "per-page", Usage: "Results per page (0 uses the configured default)"},
			&cli.IntFlag{Name: "hard-cap", Usage: "Maximum number of matches"},
			&cli.BoolFlag{Name: "all", Usage: "Disable pagination"},
			&cli.StringSliceFlag{Name: "filter", Usage: "Filter to apply (online, flagged, verified, unverified, banned, notbanned)"},
			&cli.StringFlag{Name: "group", Usage: "Only keep members of this group"},
			&cli.StringFlag{Name: "sort-by", Usage: "Record field to sort by"},
			&cli.StringFlag{Name: "sort-direction", Usage: "asc or desc"},
			&cli.StringFlag{Name: "requester", Usage: "Local uid to search as"},
			&cli.BoolFlag{Name: "demo", Usage: "Search the in-memory demo population instead of the configured backend"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runSearch(ctx, c)
		},
	}
}

func runSearch(ctx context.Context, c *cli.Command) error {
	var overrides []func(*config.Config)
	if c.Bool("demo") {
		overrides = append(overrides, func(cfg *config.Config) {
			cfg.Identity.Backend = config.IdentityBackendMemory
			cfg.Identity.SeedDemo = true
		})
	}
	cfg, err := config.Load(c.String("config"), overrides...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Discard()
	if c.Bool("debug") {
		log = logger.NewWithWriter(c.Root().ErrWriter, config.LogConfig{Level: "debug", Format: "text"})
	}

	q, err := handler.ParseSearchRequest(searchParams(c), cfg.Search.MaxResultsPerPage)
	if err != nil {
		return err
	}
	if raw := c.String("requester"); raw != "" {
		requester, err := id.ParseUID(raw)
		if err != nil || !requester.IsLocal() {
			return fmt.Errorf("requester must be a local uid, got %q", raw)
		}
		q.Requester = requester
	}

	backends, err := app.OpenBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackends(backends, log)

	a, err := app.New(cfg, backends, log, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to flush audit events", "error", err)
		}
	}()
	result, err := a.Service.Search(ctx, q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// searchParams maps flags onto the HTTP parameter names so the CLI shares
// the endpoint's validation.
func searchParams(c *cli.Command) url.Values {
	v := url.Values{}
	v.Set("query", c.Args().First())
	set := func(name, value string) {
		if value != "" {
			v.Set(name, value)
		}
	}
	set("searchBy", c.String("by"))
	set("groupName", c.String("group"))
	set("sortBy", c.String("sort-by"))
	set("sortDirection", c.String("sort-direction"))
	v.Set("page", strconv.Itoa(c.Int("page")))
	if n := c.Int("per-page"); n != 0 {
		v.Set("resultsPerPage", strconv.Itoa(n))
	}
	if n := c.Int("hard-cap"); n != 0 {
		v.Set("hardCap", strconv.Itoa(n))
	}
	if c.Bool("all") {
		v.Set("paginate", "false")
	}
	for _, f := range c.StringSlice("filter") {
		v.Add("filters", f)
	}
	return v
}

func closeBackends(b *app.Backends, log *slog.Logger) {
	if err := b.Close(); err != nil {
		log.Warn("failed to close backends", "error", err)
	}
}
