// Package minerva archives the Minerva "View All Requests" expense-report
// list by driving an already-running Chrome instance over the DevTools
// Protocol: it opens each request's detail view, prints it to PDF, and
// returns to the list for the next row.
//
// The operator launches Chrome with remote debugging enabled, logs in, and
// navigates to the list page by hand; the tool attaches to that tab:
//
//	sess, err := minerva.Attach()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	t := minerva.NewTraverser(sess)
//	t.OutputDir = "pdf_output"
//	err = t.Run(ctx)
//
// Use options to point at a non-default debugging endpoint or to let the
// tool launch its own browser (downloading one if necessary):
//
//	sess, err := minerva.Attach(
//	    minerva.WithDebuggerAddress("127.0.0.1:9333"),
//	    minerva.WithWaitTimeout(30*time.Second),
//	)
//	sess, err = minerva.Attach(minerva.WithLaunch())
//
// A [Traverser] walks the list one row at a time: it classifies the current
// page ([Classify]), extracts the row's fields from fixed table positions
// ([ExtractRowFields]), clicks through to the detail view, captures it
// ([Session.PrintToPDF], returning a [Result]), and navigates back,
// verifying the list page was recovered before continuing. Captured rows
// can additionally be handed to a [RowSink] for text extraction and
// database persistence.
//
// Artifacts are named <years>_<NNN>_<label>.pdf where years is derived from
// the first and last rows' start dates, NNN is the 1-based row index zero
// padded to three digits, and label is a sanitized join of the row's fields.
package minerva
