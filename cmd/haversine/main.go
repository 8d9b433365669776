// Command haversine prints great-circle distances from West Alexandria, OH
// and, with -nearby, lists the cities within a radius of an origin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/samirrijal/cityradius/internal/adapters/csvfile"
	"github.com/samirrijal/cityradius/internal/adapters/memory"
	"github.com/samirrijal/cityradius/internal/adapters/postgres"
	"github.com/samirrijal/cityradius/internal/adapters/sqlite"
	"github.com/samirrijal/cityradius/internal/core/domain"
	"github.com/samirrijal/cityradius/internal/core/ports"
	"github.com/samirrijal/cityradius/internal/core/usecases"
	"github.com/samirrijal/cityradius/internal/pkg/config"
	"github.com/samirrijal/cityradius/internal/pkg/logging"
)

var (
	westAlexandria = domain.NewPosition("West Alexandria, OH", 39.744596, -84.533226)

	demoDestinations = []domain.Position{
		domain.NewPosition("Tipp City, OH", 39.958044, -84.173374),
		domain.NewPosition("Lubbock, TX", 33.576001, -101.858604),
		domain.NewPosition("Paris, France", 48.856113, 2.351508),
	}
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "haversine:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	nearby   bool
	origin   domain.Position
	radius   float64
	limit    int
	source   string
	csvPath  string
	dbPath   string
	logLevel string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("haversine", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.BoolVar(&o.nearby, "nearby", false, "list cities within -radius miles of the origin")
	fs.StringVar(&o.origin.Name, "name", westAlexandria.Name, "origin name")
	fs.Float64Var(&o.origin.Lat, "lat", westAlexandria.Lat, "origin latitude")
	fs.Float64Var(&o.origin.Lon, "lon", westAlexandria.Lon, "origin longitude")
	fs.Float64Var(&o.radius, "radius", 25, "radius in miles")
	fs.IntVar(&o.limit, "limit", 0, "maximum cities to list (0 = no limit beyond the service cap)")
	fs.StringVar(&o.source, "source", "csv", "city source: csv, sqlite or postgres")
	fs.StringVar(&o.csvPath, "csv", "database/uscities.csv", "path to uscities.csv")
	fs.StringVar(&o.dbPath, "db", "", "path to the SQLite database (default from config)")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	logging.Setup(o.logLevel, "text")

	if !o.nearby {
		printDistances(stdout, usecases.NewCityService(memory.NewCityRepo(), nil, nil))
		return nil
	}

	repo, closeRepo, err := openRepo(ctx, o)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := usecases.NewCityService(repo, nil, nil)
	cities, err := svc.FindNearby(ctx, o.origin, o.radius, o.limit)
	if err != nil {
		return err
	}
	printCities(stdout, o, cities)
	return nil
}

// printDistances writes the distance from West Alexandria to each demo destination.
func printDistances(w io.Writer, svc *usecases.CityService) {
	for _, to := range demoDestinations {
		d := svc.Distance(westAlexandria, to)
		fmt.Fprintf(w, "Distance between %s and %s is %s miles (%s kilometers).\n",
			d.From.Name, d.To.Name, formatNumber(d.Miles), formatNumber(d.Kilometers))
	}
}

func printCities(w io.Writer, o *options, cities []domain.City) {
	fmt.Fprintf(w, "%d cities within %s miles of %s:\n", len(cities), formatNumber(o.radius), o.origin.Name)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range cities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f mi\n", c.Name, c.StateCode, c.CountyName, *c.Distance)
	}
	_ = tw.Flush()
}

func openRepo(ctx context.Context, o *options) (ports.CityRepository, func(), error) {
	switch o.source {
	case "csv":
		res, err := csvfile.ReadFile(o.csvPath)
		if err != nil {
			return nil, nil, err
		}
		if res.Skipped > 0 {
			slog.Warn("skipped rows without coordinates", "path", o.csvPath, "skipped", res.Skipped)
		}
		return memory.NewCityRepo(res.Cities...), func() {}, nil

	case "sqlite":
		path := o.dbPath
		if path == "" {
			cfg, err := config.Load("cityradius-cli")
			if err != nil {
				return nil, nil, err
			}
			path = cfg.Database.SQLitePath
		}
		repo, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil

	case "postgres":
		cfg, err := config.Load("cityradius-cli")
		if err != nil {
			return nil, nil, err
		}
		db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		return postgres.NewCityRepo(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown source %q", o.source)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
