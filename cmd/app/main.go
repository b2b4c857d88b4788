package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	linksFlag  = &cli.StringFlag{Name: "links", Aliases: []string{"l"}, Usage: "read collected links from a JSON dump instead of the portal"}
	exportFlag = &cli.StringFlag{Name: "export", Usage: "export the report under this basename"}
	formatFlag = &cli.StringFlag{Name: "format", Value: "json", Usage: "export format, json or csv"}
)

func main() {
	app := &cli.App{
		Name:  "odm-linkaudit",
		Usage: "audit the external links of the open data maturity portal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "manifest", Aliases: []string{"m"}, Usage: "path to the links manifest"},
			&cli.StringFlag{Name: "status-dir", Usage: "directory for per-tab status artifacts"},
			&cli.IntFlag{Name: "workers", Usage: "probe worker pool size"},
			&cli.DurationFlag{Name: "timeout", Usage: "per-request probe timeout"},
			&cli.BoolFlag{Name: "insecure", Usage: "skip TLS certificate verification"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			{
				Name:   "audit",
				Usage:  "collect, probe and reconcile links, then print the report",
				Flags:  []cli.Flag{linksFlag, exportFlag, formatFlag},
				Action: auditAction,
			},
			{
				Name:   "probe",
				Usage:  "probe collected links and persist status artifacts",
				Flags:  []cli.Flag{linksFlag},
				Action: probeAction,
			},
			{
				Name:   "report",
				Usage:  "rebuild the report from persisted status artifacts",
				Flags:  []cli.Flag{exportFlag, formatFlag},
				Action: reportAction,
			},
			{
				Name:  "collect",
				Usage: "harvest portal links and write them as a dump file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "collected_links.json", Usage: "dump file to write"},
				},
				Action: collectAction,
			},
			{
				Name:  "manifest",
				Usage: "maintain the links manifest",
				Subcommands: []*cli.Command{
					{
						Name:  "generate",
						Usage: "derive the manifest from a worksheet CSV export",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "worksheet CSV export to read"},
							&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "manifest file to write (defaults to the configured path)"},
						},
						Action: manifestGenerateAction,
					},
					{
						Name:   "validate",
						Usage:  "load the manifest and report its tab counts",
						Action: manifestValidateAction,
					},
				},
			},
			{
				Name:   "clean",
				Usage:  "remove persisted status artifacts",
				Action: cleanAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
