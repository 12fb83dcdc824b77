package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/config"
	"github.com/mit-pdos/vsfs-journal/util"
	"github.com/mit-pdos/vsfs-journal/vsfs"
)

// fail logs err and returns the failure status.
func fail(what string, err error) subcommands.ExitStatus {
	util.Logger().WithError(err).Errorf("%s failed", what)
	return subcommands.ExitFailure
}

// withFs opens the configured image, runs fn on it and closes the image.
func withFs(conf *config.Config, fn func(fs *vsfs.Fs) error) error {
	img, err := openImage(conf.Image)
	if err != nil {
		return err
	}
	fs, err := vsfs.MkFs(img)
	if err == nil {
		err = fn(fs)
	}
	if cerr := img.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// mkfsCmd implements subcommands.Command for the "mkfs" command.
type mkfsCmd struct {
	out io.Writer
}

func (*mkfsCmd) Name() string     { return "mkfs" }
func (*mkfsCmd) Synopsis() string { return "format a new, empty filesystem image" }
func (*mkfsCmd) Usage() string {
	return `mkfs - create or overwrite the image with an empty filesystem.
`
}
func (*mkfsCmd) SetFlags(*flag.FlagSet) {}

func (c *mkfsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	img, err := createImage(conf.Image, common.NBLOCKS)
	if err != nil {
		return fail("mkfs", err)
	}
	err = vsfs.Mkfs(img)
	if cerr := img.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fail("mkfs", err)
	}
	fmt.Fprintf(c.out, "formatted %s: %d blocks, %d inodes\n",
		conf.Image, common.NBLOCKS, common.NINODES)
	return subcommands.ExitSuccess
}

// createCmd implements subcommands.Command for the "create" command.
type createCmd struct {
	out io.Writer
}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "stage the creation of an empty file in the journal" }
func (*createCmd) Usage() string {
	return `create <filename> - log the creation of <filename> in the root directory.
Run install to apply it.
`
}
func (*createCmd) SetFlags(*flag.FlagSet) {}

func (c *createCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)
	conf := args[0].(*config.Config)
	var inum common.Inum
	err := withFs(conf, func(fs *vsfs.Fs) error {
		var err error
		inum, err = fs.Create(name)
		return err
	})
	if err != nil {
		return fail("create", err)
	}
	fmt.Fprintf(c.out, "logged creation of %q (inode %d); run install to apply\n", name, inum)
	return subcommands.ExitSuccess
}

// installCmd implements subcommands.Command for the "install" command.
type installCmd struct {
	out io.Writer
}

func (*installCmd) Name() string     { return "install" }
func (*installCmd) Synopsis() string { return "apply committed journal transactions and clear the journal" }
func (*installCmd) Usage() string {
	return `install - replay the journal into the filesystem and empty it.
`
}
func (*installCmd) SetFlags(*flag.FlagSet) {}

func (c *installCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	err := withFs(conf, func(fs *vsfs.Fs) error {
		n, err := fs.Install()
		// transactions before a failure stay applied, so report them either way
		fmt.Fprintf(c.out, "installed %d transaction(s)\n", n)
		return err
	})
	if err != nil {
		return fail("install", err)
	}
	return subcommands.ExitSuccess
}

// lsCmd implements subcommands.Command for the "ls" command.
type lsCmd struct {
	out io.Writer
}

func (*lsCmd) Name() string     { return "ls" }
func (*lsCmd) Synopsis() string { return "list the root directory and the journal state" }
func (*lsCmd) Usage() string {
	return `ls - list installed files and summarize pending journal transactions.
`
}
func (*lsCmd) SetFlags(*flag.FlagSet) {}

func (c *lsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	err := withFs(conf, func(fs *vsfs.Fs) error {
		st, err := fs.Status()
		if err != nil {
			return err
		}
		ents, err := fs.ReadDir()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.out, 0, 8, 2, ' ', 0)
		fmt.Fprintf(w, "INODE\tNAME\tTYPE\tSIZE\n")
		for _, e := range ents {
			ip, err := fs.ReadInode(e.Inum)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%s\t%v\t%d\n", e.Inum, e.Name, ip.Type, ip.Size)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		printStatus(c.out, st)
		return nil
	})
	if err != nil {
		return fail("ls", err)
	}
	return subcommands.ExitSuccess
}

func printStatus(out io.Writer, st *vsfs.Status) {
	fmt.Fprintf(out, "free inodes: %d\n", st.FreeInodes)
	if !st.Valid {
		fmt.Fprintf(out, "journal: uninitialized\n")
		return
	}
	fmt.Fprintf(out, "journal: %d bytes used, %d free, %d committed transaction(s) pending\n",
		st.BytesUsed, st.Free, st.Committed)
	if st.Uncommitted > 0 {
		fmt.Fprintf(out, "journal: %d uncommitted record(s) will be discarded\n", st.Uncommitted)
	}
	if st.Corrupt != nil {
		fmt.Fprintf(out, "journal: install will stop early: %v\n", st.Corrupt)
	}
}
