package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tarasglek/free-disk/internal/config"
	"github.com/tarasglek/free-disk/internal/diskusage"
	"github.com/tarasglek/free-disk/internal/logging"
	"github.com/tarasglek/free-disk/internal/metrics"
	"github.com/tarasglek/free-disk/internal/reclaim"
)

// versionString is set at build time with
// -ldflags "-X main.versionString=v1.2.3".
var versionString = "dev"

// errFailed ends the process with a non-zero status after the reason has
// already been logged (or needs no diagnostic).
var errFailed = errors.New("run failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cmd := newRootCommand(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func newRootCommand(stderr io.Writer) *cobra.Command {
	var configFile string
	flagConf := config.Default()

	cmd := &cobra.Command{
		Use:   "free-disk [flags] ROOT_DIR",
		Short: "Delete the oldest files under ROOT_DIR until enough disk space is free",
		Long: `Delete files with the oldest modification date under ROOT_DIR
until a minimum of --free-bytes are available on the respective disk.

Exits with status 0 when the free space target is met, 1 otherwise.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       versionString,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := resolveConfig(cmd.Flags(), configFile, flagConf, args)
			if err != nil {
				return err
			}
			return execute(conf, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "Path to a TOML configuration file; flags override its values")
	f.StringVar(&flagConf.FreeBytes, "free-bytes", "", "Required free space. examples: 1024, 1024B, 4KiB, 4KB, 2TB")
	f.StringVar(&flagConf.DeleteRegexp, "delete-re", flagConf.DeleteRegexp, "Only delete files whose path matches regexp. examples: .*mp4$")
	f.BoolVar(&flagConf.TrackBytesDeleted, "track-bytes-deleted", false,
		"Use total size of deleted files instead of filesystem free space for completion. "+
			"This is useful on filesystems like ZFS with laggy free-disk indicators")
	f.BoolVarP(&flagConf.Debug, "debug", "d", false, "Enable debug logging")
	f.StringVar(&flagConf.LogLevel, "log-level", flagConf.LogLevel, "Log level (debug, info, warn, error)")
	f.StringVar(&flagConf.LogFormat, "log-format", flagConf.LogFormat, "Log format (text or json)")
	f.StringVar(&flagConf.LogFile, "log-file", "", "Also append log lines to this file")
	f.StringVar(&flagConf.MetricsTextfile, "metrics-textfile", "", "Write run metrics to this file for the node-exporter textfile collector")

	return cmd
}

// resolveConfig layers the configuration file, explicitly set flags and the
// positional root directory, in that order.
func resolveConfig(flags *pflag.FlagSet, configFile string, flagConf config.Config, args []string) (config.Config, error) {
	conf := config.Default()
	if configFile != "" {
		var err error
		conf, err = config.Load(configFile)
		if err != nil {
			return conf, err
		}
	}

	overrides := map[string]func(){
		"free-bytes":          func() { conf.FreeBytes = flagConf.FreeBytes },
		"delete-re":           func() { conf.DeleteRegexp = flagConf.DeleteRegexp },
		"track-bytes-deleted": func() { conf.TrackBytesDeleted = flagConf.TrackBytesDeleted },
		"debug":               func() { conf.Debug = flagConf.Debug },
		"log-level":           func() { conf.LogLevel = flagConf.LogLevel },
		"log-format":          func() { conf.LogFormat = flagConf.LogFormat },
		"log-file":            func() { conf.LogFile = flagConf.LogFile },
		"metrics-textfile":    func() { conf.MetricsTextfile = flagConf.MetricsTextfile },
	}
	flags.Visit(func(fl *pflag.Flag) {
		if override, ok := overrides[fl.Name]; ok {
			override()
		}
	})

	if len(args) == 1 {
		conf.RootDir = args[0]
	}
	return conf, nil
}

func execute(conf config.Config, stderr io.Writer) error {
	log, closer, err := logging.New(logging.Options{
		Level:  conf.LogLevel,
		Debug:  conf.Debug,
		Format: conf.LogFormat,
		File:   conf.LogFile,
		Out:    stderr,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	target, filter, err := conf.Validate()
	if err != nil {
		log.WithError(err).Error("Invalid arguments")
		return errFailed
	}

	mode := reclaim.TrackFilesystemFree
	if conf.TrackBytesDeleted {
		mode = reclaim.TrackBytesDeleted
	}

	probe := diskusage.Probe{}
	logSystemInfo(log, probe, conf.RootDir)

	var runMetrics *metrics.Run
	if conf.MetricsTextfile != "" {
		runMetrics = metrics.NewRun()
	}

	reclaimer := &reclaim.Reclaimer{
		Fs:      afero.NewOsFs(),
		Space:   probe,
		Logger:  log,
		Metrics: runMetrics,
	}
	res, runErr := reclaimer.Run(reclaim.Request{
		Root:       conf.RootDir,
		TargetFree: target,
		Filter:     filter,
		Mode:       mode,
	})

	if runMetrics != nil {
		if err := runMetrics.WriteTextfile(conf.MetricsTextfile); err != nil {
			log.WithError(err).WithField("file", conf.MetricsTextfile).Error("Failed to write metrics textfile")
		}
	}

	if runErr != nil {
		entry := log.WithError(runErr)
		if res != nil {
			entry = entry.WithFields(logrus.Fields{
				"removed_files": res.Removed,
				"deleted_bytes": res.BytesFreed,
			})
		}
		entry.Error("Aborted")
		return errFailed
	}
	if !res.Sufficient {
		return errFailed
	}
	return nil
}
