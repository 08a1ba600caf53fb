package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/yayuyokano/meal-calculate/internal/domain/apperr"
	"github.com/yayuyokano/meal-calculate/internal/domain/cafeteria"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/fetch"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/htmlmenu"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/metrics"
	"github.com/yayuyokano/meal-calculate/pkg/logger"
)

func cafeteriasCommand() *cli.Command {
	return &cli.Command{
		Name:  "cafeterias",
		Usage: "Manage the cafeteria directory",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List known cafeterias",
				Action: runCafeteriasList,
			},
			{
				Name:  "update",
				Usage: "Scrape the directory page and save the cafeteria list",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "renderer",
						Usage: "Fetch the directory page with the browser renderer",
					},
				},
				Action: runCafeteriasUpdate,
			},
		},
	}
}

func runCafeteriasList(c *cli.Context) error {
	deps := buildDependencies(configFrom(c))
	dir := deps.directory(c.Context)

	for _, caf := range dir.All() {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", caf.ID, caf.Name, dir.URL(caf.ID))
	}
	return nil
}

func runCafeteriasUpdate(c *cli.Context) error {
	cfg := configFrom(c)
	deps := buildDependencies(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list, err := deps.refreshCafeterias(ctx, c.Bool("renderer"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintf(c.App.Writer, "%d cafeterias saved to %s\n", len(list), deps.repo.Path())
	return nil
}

// refreshCafeterias は一覧ページから食堂を抽出してデータファイルに保存する
// 1件も見つからなければ既存のファイルは変更しない
func (d *Dependencies) refreshCafeterias(ctx context.Context, withRenderer bool) (list []cafeteria.Cafeteria, err error) {
	defer func() {
		metrics.RecordCafeteriaRefresh(len(list), err)
	}()

	target := d.cfg.Source.DirectoryURL

	var doc fetch.Document
	if withRenderer {
		if d.renderer == nil {
			return nil, apperr.Retrieval("renderer is not configured", nil)
		}
		doc, err = d.renderer.Render(ctx, target)
	} else {
		doc, err = d.getter.Get(ctx, target)
	}
	if err != nil {
		return nil, apperr.Retrieval(fmt.Sprintf("failed to fetch directory page %s", target), err)
	}

	list = htmlmenu.DiscoverCafeterias(doc.Body, doc.URL)
	if len(list) == 0 {
		return nil, apperr.ExtractionEmpty(fmt.Sprintf("no cafeterias found on %s", target))
	}

	if err := d.repo.Save(ctx, list); err != nil {
		return nil, err
	}

	logger.InfoCF("cafeterias", "Cafeteria list refreshed", map[string]interface{}{
		"url":   target,
		"count": len(list),
		"path":  d.repo.Path(),
	})
	return list, nil
}
