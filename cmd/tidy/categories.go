package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-files-must-flow/internal/category"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the built-in category table",
		Long:  `Display every category with its destination folder and known extensions.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			table := category.NewTable()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				headerStyle.Render("Category"),
				headerStyle.Render("Folder"),
				headerStyle.Render("Extensions"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 16),
				strings.Repeat("-", 16),
				strings.Repeat("-", 40))

			for _, def := range table.Definitions() {
				exts := append([]string(nil), def.Extensions...)
				sort.Strings(exts)
				list := strings.Join(exts, " ")
				if list == "" {
					list = "(everything else)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", def.Key, def.DisplayFolder, list)
			}
			return nil
		},
	}
}
