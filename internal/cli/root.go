package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"
	"github.com/spf13/cobra"

	"filemanager/internal/console"
	"filemanager/internal/pipeline"
	"filemanager/internal/runstate"
)

// Version is stamped at build time.
var Version = "dev"

// NewRootCommand builds the filemanager command tree. The outcome of the
// last executed run is stored in *res.
func NewRootCommand(env Env, res *CLIResult) *cobra.Command {
	if res == nil {
		res = &CLIResult{}
	}
	var flags Flags

	runE := func(cmd *cobra.Command, _ []string) error {
		cwd, _ := os.Getwd()
		inv, err := ParseInvocation(flags, func(name string) bool { return cmd.Flags().Changed(name) }, cwd)
		if err != nil {
			res.ExitCode = ExitCode(err)
			return err
		}
		out, err := Execute(cmd.Context(), inv, env)
		*res = out
		return err
	}

	root := &cobra.Command{
		Use:   "filemanager",
		Short: "Generate table files, report them, and summarize their names",
		Long: `filemanager creates a data directory, writes a fixed table into each of
N text files, prints every file, extracts the name column from all of them
and saves the names to a summary file.

Running without a subcommand is the same as "filemanager run".`,
		Args:          noPositionalArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runE,
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocationf("%v", err)
	})
	addRunFlags(root, &flags)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run every stage once",
		Args:  noPositionalArgs,
		RunE:  runE,
	}
	addRunFlags(runCmd, &flags)

	var runsWorkDir string
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Args:  noPositionalArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, _ := os.Getwd()
			inv, err := ParseInvocation(Flags{WorkDir: runsWorkDir}, nil, cwd)
			if err != nil {
				res.ExitCode = ExitCode(err)
				return err
			}
			fsys := env.FS
			if fsys == nil {
				fsys = billy.NewLocal()
			}
			if err := ListRuns(cmd.OutOrStdout(), fsys, inv.WorkDir); err != nil {
				res.ExitCode = ExitInternalError
				return err
			}
			res.ExitCode = ExitSuccess
			return nil
		},
	}
	runsCmd.Flags().StringVar(&runsWorkDir, "workdir", "", "Working directory holding .filemanager/runs (default: current directory)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  noPositionalArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "filemanager %s\n", Version)
			res.ExitCode = ExitSuccess
		},
	}

	root.AddCommand(runCmd, runsCmd, versionCmd)
	return root
}

func addRunFlags(cmd *cobra.Command, f *Flags) {
	fl := cmd.Flags()
	fl.StringVar(&f.WorkDir, "workdir", "", "Working directory; relative paths resolve against it (default: current directory)")
	fl.StringVar(&f.ConfigPath, "config", "", "YAML config file (default: <workdir>/filemanager.yaml if present)")
	fl.StringVar(&f.DataDir, "data-dir", pipeline.DefaultDataDir, "Directory receiving the data files")
	fl.IntVar(&f.FileCount, "count", pipeline.DefaultFileCount, "Number of data files to generate")
	fl.StringVar(&f.SummaryPath, "summary", pipeline.DefaultSummaryPath, "Summary file path")
	fl.StringVar(&f.TracePath, "trace", "", "Trace output path (optional)")
	fl.BoolVar(&f.Record, "record", false, "Persist run records under <workdir>/.filemanager/runs")
	fl.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable debug logging")
}

func noPositionalArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 {
		return invalidInvocationf("unexpected positional arguments: %q", args)
	}
	return nil
}

// ListRuns prints the runs recorded under workDir, sorted by run id.
func ListRuns(w io.Writer, fsys core.FS, workDir string) error {
	store, err := runstate.NewStore(fsys, workDir)
	if err != nil {
		return err
	}
	ids, err := store.ListRunIDs()
	if err != nil {
		return err
	}
	out := console.New(w)
	if len(ids) == 0 {
		out.Detail("no recorded runs")
		return nil
	}
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		run, err := store.LoadRun(id)
		if err != nil {
			rows = append(rows, []string{id, "unreadable"})
			continue
		}
		failure := ""
		if f, err := store.LoadFailure(id); err == nil {
			failure = string(f.FailureClass) + ": " + f.ErrorCode
		} else if !errors.Is(err, fs.ErrNotExist) {
			failure = "unreadable"
		}
		rows = append(rows, []string{
			run.RunID,
			string(run.Status),
			run.Stage,
			strconv.Itoa(run.NameCount),
			run.StartTime.UTC().Format(time.RFC3339),
			failure,
		})
	}
	out.Table([]string{"RUN", "STATUS", "STAGE", "NAMES", "STARTED", "FAILURE"}, rows)
	return nil
}
