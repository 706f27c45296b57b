package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rhuss/evalkit/pkg/catalog"
)

func modelsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List catalog models and their per-million-token prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			cat := catalog.Default()
			if cfg.CatalogFile != "" {
				extra, err := catalog.LoadFile(cfg.CatalogFile)
				if err != nil {
					return err
				}
				cat = cat.Merge(extra...)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tINPUT $/1M\tOUTPUT $/1M")
			for _, e := range cat.Entries() {
				if e.Cost == nil {
					fmt.Fprintf(w, "%s\t-\t-\n", e.ID)
					continue
				}
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", e.ID, e.Cost.Input*1e6, e.Cost.Output*1e6)
			}
			return w.Flush()
		},
	}
}
