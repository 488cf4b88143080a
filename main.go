package main

import (
	"fmt"
	"os"

	"github.com/masahiro331/go-mbr-parser/pkg/disk"
	"github.com/masahiro331/go-mbr-parser/pkg/report"
	"github.com/masahiro331/go-mbr-parser/pkg/source"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var defaultLogFormatter = &log.TextFormatter{}

// infoFormatter overrides the default format for Info() log events to
// provide an easier to read output
type infoFormatter struct {
}

func (f *infoFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Level == log.InfoLevel {
		return append([]byte(entry.Message), '\n'), nil
	}
	return defaultLogFormatter.Format(entry)
}

func main() {
	app := cli.App{
		Name:  "mbr-parser",
		Usage: "Decode the master boot record of a disk image or block device",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "errors only"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug output"},
		},
		Before: func(c *cli.Context) error {
			log.SetFormatter(new(infoFormatter))
			log.SetLevel(log.InfoLevel)
			if c.Bool("quiet") && c.Bool("verbose") {
				return fmt.Errorf("can't set quiet and verbose flag at the same time")
			}
			if c.Bool("quiet") {
				log.SetLevel(log.ErrorLevel)
			}
			if c.Bool("verbose") {
				log.SetFormatter(defaultLogFormatter)
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "Decode and print the partition table",
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "structural JSON output"},
					&cli.BoolFlag{Name: "show-empty", Usage: "include unused table slots"},
					&cli.BoolFlag{Name: "primary-only", Usage: "do not follow extended partition chains"},
					&cli.Uint64Flag{Name: "sector-size", Value: 512, Usage: "sector size for displayed byte sizes"},
				},
				Action: inspectImage,
			},
			{
				Name:      "validate",
				Usage:     "Decode and report advisory partition table findings",
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "primary-only", Usage: "do not follow extended partition chains"},
				},
				Action: validateImage,
			},
			{
				Name:      "bootcode",
				Usage:     "Dump the 446 boot-code bytes",
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write to `FILE` instead of stdout"},
				},
				Action: dumpBootcode,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openAndInspect(c *cli.Context, primaryOnly bool) (*disk.Disk, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one IMAGE argument")
	}
	name := c.Args().First()

	src, err := source.Open(name)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	log.Debugf("opened %s", src.Name())

	d, err := disk.Inspect(src, disk.Options{PrimaryOnly: primaryOnly})
	if err != nil {
		return nil, err
	}
	log.Debugf("decoded %d extended chains", len(d.Chains))
	return d, nil
}

func inspectImage(c *cli.Context) error {
	d, err := openAndInspect(c, c.Bool("primary-only"))
	if err != nil {
		return err
	}

	opts := report.Options{
		ShowEmpty:  c.Bool("show-empty"),
		SectorSize: c.Uint64("sector-size"),
	}
	if c.Bool("json") {
		return report.JSON(os.Stdout, d, opts)
	}
	return report.Text(os.Stdout, d, opts)
}

func validateImage(c *cli.Context) error {
	d, err := openAndInspect(c, c.Bool("primary-only"))
	if err != nil {
		return err
	}

	if err := disk.Validate(d); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	log.Info("partition table is clean")
	return nil
}

func dumpBootcode(c *cli.Context) error {
	// Boot code lives in sector 0; no need to walk extended chains.
	d, err := openAndInspect(c, true)
	if err != nil {
		return err
	}

	w := os.Stdout
	if output := c.String("output"); output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return report.Bootcode(w, d)
}
