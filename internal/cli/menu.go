package cli

import (
	"github.com/spf13/cobra"

	"MiniCatalog/internal/menu"
)

func newMenuCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive product menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd)
		},
	}
}

func (a *app) runMenu(cmd *cobra.Command) error {
	ctx := cmd.Context()

	store, closeFn, err := a.openStore(ctx, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	m := menu.New(store, a.cfg.Location(), cmd.InOrStdin(), cmd.OutOrStdout())
	return m.Run(ctx)
}
