package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"MiniCatalog/internal/dirlist"
)

func newLsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory with type and r/w/h flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				fmt.Fprintln(out, "Please enter the full path : ")
				sc := bufio.NewScanner(cmd.InOrStdin())
				if !sc.Scan() {
					return errors.New("no path given")
				}
				path = strings.TrimSpace(sc.Text())
			}

			entries, err := dirlist.List(a.fs, path)
			if errors.Is(err, dirlist.ErrNotDirectory) {
				fmt.Fprintln(out, "Path does not exist or is not a directory")
				return nil
			}
			if err != nil {
				return err
			}

			for _, e := range entries {
				fmt.Fprintln(out, e)
			}
			return nil
		},
	}
}
