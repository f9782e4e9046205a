package main

import (
	"github.com/sells-group/dco-dashboard/internal/activity"
	"github.com/sells-group/dco-dashboard/internal/config"
	"github.com/sells-group/dco-dashboard/internal/dashboard"
	"github.com/sells-group/dco-dashboard/internal/fetcher"
	"github.com/sells-group/dco-dashboard/internal/library"
	"github.com/sells-group/dco-dashboard/internal/sheet"
)

// appEnv bundles the loaders built from configuration.
type appEnv struct {
	Activities *activity.Loader
	Library    *library.Loader
}

// initApp wires fetchers, the sheet loader and both table loaders from c.
func initApp(c *config.Config) (*appEnv, error) {
	loc, err := c.TimeLocation()
	if err != nil {
		return nil, err
	}

	mux := &fetcher.Mux{
		HTTP: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  c.Fetch.UserAgent,
			Timeout:    c.FetchTimeout(),
			MaxRetries: c.Fetch.MaxRetries,
			RatePerSec: c.Fetch.RatePerSec,
		}),
		FTP:  fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: c.FetchTimeout()}),
		File: fetcher.FileFetcher{},
	}
	sheets := sheet.NewLoader(mux, sheet.WithPlaceholder(c.Normalize.Placeholder))
	times := sheet.TimeParser{DayFirst: c.Timestamp.DayFirst, Location: loc}

	return &appEnv{
		Activities: activity.NewLoader(sheets, source("activities", c.Sources.Activities), times),
		Library:    library.NewLoader(sheets, source("library", c.Sources.Library), times),
	}, nil
}

func source(name string, sc config.SourceConfig) sheet.Source {
	return sheet.Source{
		Name:      name,
		URL:       sc.URL,
		Format:    sheet.Format(sc.Format),
		Sheet:     sc.Sheet,
		Delimiter: sc.DelimiterRune(),
	}
}

// dashboardOptions maps configuration onto page options.
func dashboardOptions(c *config.Config) dashboard.Options {
	return dashboard.Options{
		Title:       c.Dashboard.Title,
		Footer:      c.Dashboard.Footer,
		RefreshSecs: c.Dashboard.RefreshSecs,
		Columns:     c.Dashboard.Columns,
		CORSOrigins: c.Server.CORSOrigins,
	}
}
