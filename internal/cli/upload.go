package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (a *app) uploadCmd() *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			url, err := a.api.Upload(cmd.Context(), filepath.Base(args[0]), f, folder)
			if err != nil {
				return a.failed("Upload failed", err, "Failed to upload the file.")
			}
			a.notifier.Success("Uploaded", fmt.Sprintf("%s (%s)", filepath.Base(args[0]), humanize.Bytes(uint64(info.Size()))))
			fmt.Fprintln(a.out, url)
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "destination folder on the server")
	return cmd
}
