package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bryan-buckman/pressroom/internal/model"
	"github.com/bryan-buckman/pressroom/internal/rss"
)

type importFlags struct {
	status      string
	category    int64
	limit       int
	concurrency int
}

func (f *importFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.status, "status", string(model.PostDraft), "status of created posts")
	fs.Int64Var(&f.category, "category", 0, "category ID for created posts")
	fs.IntVar(&f.limit, "limit", 0, "maximum items imported per feed (0 for all)")
	fs.IntVar(&f.concurrency, "concurrency", rss.DefaultConcurrency, "feeds fetched in parallel")
}

func (f *importFlags) options() (rss.Options, error) {
	opts := rss.Options{Status: model.PostStatus(f.status), Limit: f.limit}
	if !opts.Status.Valid() {
		return opts, fmt.Errorf("invalid status %q (draft or published)", f.status)
	}
	if f.category > 0 {
		id := f.category
		opts.CategoryID = &id
	}
	return opts, nil
}

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import posts from RSS or Atom feeds",
	}
	cmd.AddCommand(a.importFeedCmd(), a.importOPMLCmd())
	return cmd
}

func (a *app) importer(f *importFlags) *rss.Importer {
	return rss.NewImporter(a.api, rss.WithLogger(a.log.Named("import")), rss.WithConcurrency(f.concurrency))
}

func (a *app) importFeedCmd() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "feed <url>",
		Short: "Create a post for each item of a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			opts, err := f.options()
			if err != nil {
				return err
			}
			res, err := a.importer(&f).ImportFeed(cmd.Context(), args[0], opts)
			if err != nil {
				return a.failed("Import failed", err, "Failed to import the feed.")
			}
			a.printResults([]rss.Result{res})
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *app) importOPMLCmd() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "opml <file>",
		Short: "Import every feed of an OPML file; folders become categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			opts, err := f.options()
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			results, err := a.importer(&f).ImportOPML(cmd.Context(), file, opts)
			if len(results) > 0 {
				a.printResults(results)
			}
			if err != nil {
				return a.failed("Import failed", err, "Failed to import the OPML file.")
			}
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *app) printResults(results []rss.Result) {
	t := newTable(a.out, "Feed", "Created", "Skipped", "Failed", "Error")
	var created, failed int
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = shorten(r.Err.Error(), 60)
			failed++
		}
		title := r.Title
		if title == "" {
			title = r.URL
		}
		t.Append([]string{shorten(title, 40), fmt.Sprint(r.Created), fmt.Sprint(r.Skipped), fmt.Sprint(r.Failed), errText})
		created += r.Created
	}
	t.Render()
	if failed > 0 {
		a.notifier.Warning("Import finished with errors", fmt.Sprintf("%d posts created; %d of %d feeds failed.", created, failed, len(results)))
		return
	}
	a.notifier.Success("Import finished", fmt.Sprintf("%d posts created from %d feeds.", created, len(results)))
}
