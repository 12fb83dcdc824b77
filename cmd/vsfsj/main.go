// Command vsfsj stages file creations in a VSFS image's journal and installs
// them.
//
//	vsfsj [-image vsfs.img] [-config vsfsj.toml] [-debug N] <command> [args]
//
// Commands: mkfs, create <name>, install, ls. The exit status is 0 on success
// and 1 on any failure.
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/mit-pdos/vsfs-journal/config"
	"github.com/mit-pdos/vsfs-journal/util"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit status.
func run(args []string, stdout io.Writer, stderr io.Writer) int {
	top := flag.NewFlagSet("vsfsj", flag.ContinueOnError)
	top.SetOutput(stderr)
	image := top.String("image", "", "path of the filesystem image (default from config, else vsfs.img)")
	configPath := top.String("config", "", "TOML configuration file")
	debug := top.Uint64("debug", 0, "debug log level; 0 disables debug output")

	cdr := subcommands.NewCommander(top, "vsfsj")
	cdr.Output = stdout
	cdr.Error = stderr
	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(cdr.FlagsCommand(), "")
	cdr.Register(cdr.CommandsCommand(), "")
	cdr.Register(&mkfsCmd{out: stdout}, "")
	cdr.Register(&createCmd{out: stdout}, "")
	cdr.Register(&installCmd{out: stdout}, "")
	cdr.Register(&lsCmd{out: stdout}, "")

	if err := top.Parse(args); err != nil {
		return 1
	}

	util.SetOutput(stderr)
	conf := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			util.Logger().WithError(err).Error("loading configuration")
			return 1
		}
		conf = c
	}
	top.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "image":
			conf.Image = *image
		case "debug":
			conf.Debug = *debug
		}
	})
	if err := conf.Validate(); err != nil {
		util.Logger().WithError(err).Error("invalid configuration")
		return 1
	}
	util.SetLevel(conf.Debug)
	util.SetFormatter(conf.LogFormat)

	if cdr.Execute(context.Background(), conf) != subcommands.ExitSuccess {
		return 1
	}
	return 0
}
