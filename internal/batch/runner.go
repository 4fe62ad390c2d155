package batch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cristianadrielbraun/qrbadge/internal/pipeline"
)

// DefaultWorkers is used when a Runner is built with a non-positive worker count.
const DefaultWorkers = 4

// Entry is the outcome of one row. Exactly one of Result and Err is set.
type Entry struct {
	Row    Row
	Name   string
	Result *pipeline.Result
	Err    error
}

// Runner renders rows concurrently.
type Runner struct {
	pipe    *pipeline.Pipeline
	workers int
	log     *logrus.Logger
}

// NewRunner returns a Runner with at most workers rows in flight.
func NewRunner(pipe *pipeline.Pipeline, workers int, log *logrus.Logger) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Runner{pipe: pipe, workers: workers, log: log}
}

// Run renders every row from template. A failing row becomes an Entry with
// Err set and never stops the others. Entries keep the order of rows and
// carry unique archive names. Run only returns early when ctx is canceled;
// rows not reached are reported with the context error.
func (r *Runner) Run(ctx context.Context, rows []Row, template pipeline.Request) []Entry {
	entries := make([]Entry, len(rows))
	names := uniqueNames(rows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, row := range rows {
		i, row := i, row
		entries[i] = Entry{Row: row, Name: names[i]}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				entries[i].Err = err
				return nil
			}
			err := row.Err
			var res *pipeline.Result
			if err == nil {
				res, err = r.pipe.Run(gctx, rowRequest(template, row))
			}
			if err != nil {
				r.log.WithFields(logrus.Fields{"line": row.Line, "name": names[i]}).WithError(err).Warn("batch row failed")
				entries[i].Err = fmt.Errorf("row %d: %w", row.Line, err)
				return nil
			}
			entries[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
		}
	}
	r.log.WithFields(logrus.Fields{"rows": len(rows), "failed": failed}).Info("batch finished")
	return entries
}

// rowRequest copies template for one row. A row label replaces the badge text
// when the template carries a badge.
func rowRequest(template pipeline.Request, row Row) pipeline.Request {
	req := template
	req.Payload = row.Data
	if template.Badge != nil {
		badge := *template.Badge
		if label := strings.TrimSpace(row.Label); label != "" {
			badge.Text = label
		}
		req.Badge = &badge
	}
	return req
}
