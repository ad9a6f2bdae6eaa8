package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/bryan-buckman/pressroom/internal/confirm"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderLine(false)
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}

// details prints label/value pairs.
func details(w io.Writer, rows [][2]string) {
	t := newTable(w)
	for _, r := range rows {
		t.Append([]string{r[0] + ":", r[1]})
	}
	t.Render()
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

// destroy asks for confirmation and runs action through a confirm dialog.
// skipPrompt answers yes without asking.
func (a *app) destroy(ctx context.Context, skipPrompt bool, opts confirm.Options) error {
	d := confirm.New(a.notifier)
	opts.Severity = confirm.Danger
	opts.AutoCloseOnSuccess = true
	if err := d.Open(opts); err != nil {
		return err
	}

	if !skipPrompt {
		o := d.Options()
		fmt.Fprintf(a.out, "%s\n%s [y/N] ", o.Title, o.Message)
		line, _ := a.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
		default:
			d.Cancel()
			a.notifier.Info("Cancelled", "Nothing was changed.")
			return nil
		}
	}

	ok, err := d.Confirm(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errReported
	}
	return nil
}
