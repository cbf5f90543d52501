package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	minerva "github.com/porticus-lab/minerva-archive"
	"github.com/porticus-lab/minerva-archive/internal/detail"
	"github.com/porticus-lab/minerva-archive/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Traverse the list page and capture every request",
	Long: `run attaches to the browser, waits for you to confirm the current tab is
on the "View All Requests" page, then captures the list page and every
request's detail view as PDFs under the output directory.`,
	RunE: runArchive,
}

func init() {
	runCmd.Flags().String("addr", "127.0.0.1:9222", "remote debugging address of the running Chrome")
	runCmd.Flags().Duration("timeout", 15*time.Second, "bound on each navigation wait")
	runCmd.Flags().Int("attempts", 3, "back-navigation attempts when recovering the list page")
	runCmd.Flags().Bool("launch", false, "launch a browser instead of attaching to one")
	runCmd.Flags().String("chrome", "", "Chrome executable for --launch (default: cached Chromium)")
	runCmd.Flags().Bool("no-db", false, "skip the SQLite database")
	runCmd.Flags().Bool("no-text", false, "skip per-request text files")

	viper.BindPFlag("addr", runCmd.Flags().Lookup("addr"))
	viper.BindPFlag("timeout", runCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("attempts", runCmd.Flags().Lookup("attempts"))
	viper.BindPFlag("launch", runCmd.Flags().Lookup("launch"))
	viper.BindPFlag("chrome", runCmd.Flags().Lookup("chrome"))
	viper.BindPFlag("no_db", runCmd.Flags().Lookup("no-db"))
	viper.BindPFlag("no_text", runCmd.Flags().Lookup("no-text"))

	rootCmd.AddCommand(runCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	log := minerva.NewLogger(os.Stdout)
	log.Verbose = viper.GetBool("verbose")
	log.Quiet = viper.GetBool("quiet")

	outputDir := viper.GetString("output_dir")

	opts := []minerva.Option{
		minerva.WithDebuggerAddress(viper.GetString("addr")),
		minerva.WithWaitTimeout(viper.GetDuration("timeout")),
	}
	if viper.GetBool("launch") {
		opts = append(opts, minerva.WithLaunch())
	}
	if path := viper.GetString("chrome"); path != "" {
		opts = append(opts, minerva.WithChromePath(path))
	}

	sess, err := minerva.Attach(opts...)
	if err != nil {
		return err
	}
	// Released on every exit path, traversal aborts included.
	defer sess.Close()

	t := minerva.NewTraverser(sess)
	t.Log = log
	t.OutputDir = outputDir
	t.WaitTimeout = viper.GetDuration("timeout")
	t.RecoveryAttempts = viper.GetInt("attempts")
	t.Input = os.Stdin
	t.Prompt = os.Stdout

	saveDB := !viper.GetBool("no_db")
	saveText := !viper.GetBool("no_text")
	if saveDB || saveText {
		sink := &archiveSink{log: log, saveText: saveText}
		if saveDB {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}
			st, err := store.Open(filepath.Join(outputDir, store.DefaultFile))
			if err != nil {
				return err
			}
			defer st.Close()
			sink.db = st
		}
		t.Sink = sink
	}

	return t.Run(cmd.Context())
}

// archiveSink writes each captured row's text rendering and database
// record.
type archiveSink struct {
	log      *minerva.Logger
	db       *store.Store
	saveText bool
}

func (s *archiveSink) SaveRow(ctx context.Context, a minerva.RowArtifact) error {
	txtPath := strings.TrimSuffix(a.PDFPath, ".pdf") + ".txt"

	var ex *detail.Extract
	var err error
	if s.saveText {
		s.log.Infof("Saving text for row %d -> %s", a.Index, txtPath)
		ex, err = detail.Save(a.DetailHTML, txtPath)
	} else {
		txtPath = ""
		ex, err = detail.Parse(a.DetailHTML)
	}
	if err != nil {
		return err
	}

	if s.db == nil {
		return nil
	}
	_, err = s.db.SaveRequest(ctx, store.Request{
		Years:        a.Years,
		RowIndex:     a.Index,
		RequestDate:  a.Record.RequestDate,
		StartDate:    a.Record.StartDate,
		ReferenceNum: a.Record.ReferenceNum,
		QueueTitle:   a.Record.QueueTitle,
		PDFPath:      a.PDFPath,
		TxtPath:      txtPath,
	}, ex.Sections, ex.Items)
	return err
}
