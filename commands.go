package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/tosih/enginelog/pkg/config"
	"github.com/tosih/enginelog/pkg/export"
	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/plotspec"
	"github.com/tosih/enginelog/pkg/presets"
	"github.com/tosih/enginelog/pkg/reader"
	"github.com/tosih/enginelog/pkg/renderer"
	"github.com/tosih/enginelog/pkg/web"
	"github.com/urfave/cli/v2"
	webview "github.com/webview/webview_go"
)

func paramsCommand() *cli.Command {
	return &cli.Command{
		Name:      "params",
		Usage:     "list the parameters of a log",
		ArgsUsage: "<log.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "only parameters in this category"},
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "only parameters matching this text"},
			&cli.BoolFlag{Name: "numeric", Usage: "only plottable parameters"},
		},
		Action: func(c *cli.Context) error {
			ds, err := loadLog(c)
			if err != nil {
				return err
			}

			cols := ds.Columns()
			if category := c.String("category"); category != "" {
				if cols, err = models.FilterByCategory(ds, category); err != nil {
					return cli.Exit(err, 1)
				}
			}
			if term := c.String("search"); term != "" {
				cols = intersect(cols, models.FilterBySearch(ds, term))
			}
			if c.Bool("numeric") {
				cols = intersect(cols, ds.NumericColumns())
			}

			renderer.DisplayDataset(ds, cols)
			return nil
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "list the parameter categories",
		Action: func(c *cli.Context) error {
			renderer.ListCategories()
			return nil
		},
	}
}

func plotCommand() *cli.Command {
	return &cli.Command{
		Name:      "plot",
		Usage:     "plot parameters grouped by unit, one subplot per unit",
		ArgsUsage: "<log.csv>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "parameter key or name (repeatable)"},
			&cli.StringFlag{Name: "x", Usage: "x-axis column (default: Lcl Time or the first time column)"},
			&cli.BoolFlag{Name: "celsius", Usage: "show Fahrenheit parameters in Celsius"},
			&cli.StringFlag{Name: "preset", Usage: "use a saved parameter selection"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (.html, .png, .svg, .pdf, .csv)"},
			&cli.BoolFlag{Name: "open", Usage: "open the result in a browser"},
		},
		Action: func(c *cli.Context) error {
			ds, err := loadLog(c)
			if err != nil {
				return err
			}

			columns := c.StringSlice("param")
			xColumn := c.String("x")
			temp := temperature(c)

			if name := c.String("preset"); name != "" {
				p, err := getPreset(c, name)
				if err != nil {
					return err
				}
				columns = append(p.Columns, columns...)
				if xColumn == "" {
					xColumn = p.XColumn
				}
				if !c.IsSet("celsius") {
					temp = p.Temperature
				}
			}

			for i, col := range columns {
				columns[i] = plotspec.ResolveColumn(ds, col)
			}
			if xColumn == "" {
				xColumn = ds.DefaultXColumn()
			}
			xColumn = plotspec.ResolveColumn(ds, xColumn)

			spec, err := plotspec.BuildPlotSpec(ds, columns, xColumn, temp)
			if err != nil {
				return cli.Exit(err, 1)
			}

			renderer.RenderPlotSummary(spec)
			return writePlot(c, spec, "plot")
		},
	}
}

func xyCommand() *cli.Command {
	return &cli.Command{
		Name:      "xy",
		Usage:     "scatter one parameter against another",
		ArgsUsage: "<log.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "x", Usage: "x-axis parameter", Required: true},
			&cli.StringFlag{Name: "y", Usage: "y-axis parameter", Required: true},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (.html, .png, .svg, .pdf, .csv)"},
			&cli.BoolFlag{Name: "open", Usage: "open the result in a browser"},
		},
		Action: func(c *cli.Context) error {
			ds, err := loadLog(c)
			if err != nil {
				return err
			}

			x := plotspec.ResolveColumn(ds, c.String("x"))
			y := plotspec.ResolveColumn(ds, c.String("y"))
			spec, err := plotspec.BuildXYSpec(ds, x, y)
			if err != nil {
				return cli.Exit(err, 1)
			}

			renderer.RenderPlotSummary(spec)
			return writePlot(c, spec, "xy")
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "start the interactive viewer",
		ArgsUsage: "[dir|log.csv]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.BoolFlag{Name: "headless", Usage: "no application window; open a browser instead"},
			&cli.BoolFlag{Name: "no-browser", Usage: "with --headless, do not open a browser"},
			&cli.BoolFlag{Name: "celsius", Usage: "show Fahrenheit parameters in Celsius by default"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				path = settings.LastDir
			}
			if path == "" {
				path = "."
			}

			port := settings.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}
			availablePort, err := findAvailablePort(port, 10)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if availablePort != port {
				pterm.Warning.Printf("Port %d in use, using port %d instead\n", port, availablePort)
			}

			store, err := presets.Open(c.String("db"))
			if err != nil {
				pterm.Warning.Printf("Presets not available: %v\n", err)
				store = nil
			} else {
				defer store.Close()
			}

			cfg := config.Config{
				Port:        availablePort,
				LogPath:     path,
				DBPath:      c.String("db"),
				Temperature: temperature(c),
				Version:     version,
			}
			srv := web.NewServer(cfg, store)
			rememberDir(path)

			return runServer(srv, c.Bool("headless"), !c.Bool("no-browser"))
		},
	}
}

func presetCommand() *cli.Command {
	return &cli.Command{
		Name:  "preset",
		Usage: "manage saved parameter selections",
		Subcommands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "save or replace a preset",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "parameter key (repeatable)", Required: true},
					&cli.StringFlag{Name: "x", Usage: "x-axis column"},
					&cli.BoolFlag{Name: "celsius", Usage: "plot Fahrenheit parameters in Celsius"},
				},
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("no preset name given", 1)
					}
					store, err := presets.Open(c.String("db"))
					if err != nil {
						return err
					}
					defer store.Close()

					p, err := store.Save(&presets.Preset{
						Name:        name,
						Columns:     c.StringSlice("param"),
						XColumn:     c.String("x"),
						Temperature: temperature(c),
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					pterm.Success.Printf("Saved preset %s (%d parameters)\n", p.Name, len(p.Columns))
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list saved presets",
				Action: func(c *cli.Context) error {
					store, err := presets.Open(c.String("db"))
					if err != nil {
						return err
					}
					defer store.Close()

					list, err := store.List()
					if err != nil {
						return err
					}
					if len(list) == 0 {
						pterm.Info.Println("No presets saved")
						return nil
					}

					tableData := pterm.TableData{{"Name", "Parameters", "X axis", "Temperature", "Updated"}}
					for _, p := range list {
						tableData = append(tableData, []string{
							p.Name, strings.Join(p.Columns, ", "), p.XColumn, p.Temperature.String(), p.UpdatedAt,
						})
					}
					return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a preset",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					store, err := presets.Open(c.String("db"))
					if err != nil {
						return err
					}
					defer store.Close()

					if err := store.Delete(name); err != nil {
						return cli.Exit(fmt.Sprintf("%s: %v", name, err), 1)
					}
					pterm.Success.Printf("Deleted preset %s\n", name)
					return nil
				},
			},
		},
	}
}

func loadLog(c *cli.Context) (*models.LogDataset, error) {
	path := c.Args().First()
	if path == "" {
		return nil, cli.Exit("no log file given", 1)
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Reading %s...", filepath.Base(path)))
	ds, err := reader.Parse(path)
	if err != nil {
		spinner.Fail(err.Error())
		return nil, cli.Exit(err, 1)
	}
	spinner.Success(fmt.Sprintf("Read %d rows, %d parameters", ds.Len(), len(ds.Columns())))

	rememberDir(filepath.Dir(path))
	return ds, nil
}

func getPreset(c *cli.Context, name string) (*presets.Preset, error) {
	store, err := presets.Open(c.String("db"))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	p, err := store.Get(name)
	if errors.Is(err, presets.ErrNotFound) {
		return nil, cli.Exit(fmt.Sprintf("no preset named %q", name), 1)
	}
	return p, err
}

// temperature honours --celsius when given, the saved setting otherwise
func temperature(c *cli.Context) models.TemperatureUnit {
	if !c.IsSet("celsius") {
		return settings.Temperature
	}
	if c.Bool("celsius") {
		return models.Celsius
	}
	return models.Fahrenheit
}

func writePlot(c *cli.Context, spec *models.PlotSpec, suffix string) error {
	out := c.String("output")
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(spec.Source), filepath.Ext(spec.Source))
		out = fmt.Sprintf("%s_%s.html", base, suffix)
	}

	if err := export.ExportPlot(spec, out); err != nil {
		return cli.Exit(err, 1)
	}

	if c.Bool("open") {
		abs, err := filepath.Abs(out)
		if err == nil {
			err = web.OpenBrowser(abs)
		}
		if err != nil {
			pterm.Warning.Printf("Could not open %s: %v\n", out, err)
		}
	}
	return nil
}

func rememberDir(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	if settings.LastDir == abs {
		return
	}
	settings.LastDir = abs
	if err := config.SaveSettings(settings); err != nil {
		pterm.Debug.Printf("Could not save settings: %v\n", err)
	}
}

func intersect(cols, keep []string) []string {
	set := make(map[string]bool, len(keep))
	for _, k := range keep {
		set[k] = true
	}
	var out []string
	for _, c := range cols {
		if set[c] {
			out = append(out, c)
		}
	}
	return out
}

// runServer blocks until the window closes or a signal arrives
func runServer(srv *web.Server, headless, browser bool) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	waitForServer(srv.URL(), 10*time.Second)

	shutdown := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	}

	if headless {
		if browser {
			if err := web.OpenBrowser(srv.URL()); err != nil {
				pterm.Warning.Printf("Could not open browser: %v\n", err)
			}
		}
		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			pterm.Info.Printf("Received %v, shutting down...\n", sig)
			return shutdown()
		}
	}

	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Engine Log Viewer")
	w.SetSize(1400, 900, webview.HintNone)
	w.Navigate(srv.URL())

	go func() {
		select {
		case err := <-errCh:
			if err != nil {
				pterm.Error.Printf("Server error: %v\n", err)
			}
		case <-stop:
		}
		w.Terminate()
	}()

	w.Run()

	pterm.Info.Println("Window closed, shutting down server...")
	return shutdown()
}

// waitForServer polls until the server is accepting connections
func waitForServer(url string, timeout time.Duration) {
	addr := strings.TrimPrefix(url, "http://")
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	pterm.Warning.Printf("Server may not be ready at %s\n", url)
}

// findAvailablePort tries startPort and the maxAttempts-1 ports after it
func findAvailablePort(startPort int, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found after %d attempts starting from %d", maxAttempts, startPort)
}
