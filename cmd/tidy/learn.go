package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-files-must-flow/internal/cli"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

func learnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Inspect and edit learned extension mappings",
		Long: `The learning store remembers which category each extension belongs to for a
target root, with a confidence score and the source of the mapping.`,
	}

	cmd.AddCommand(learnListCmd())
	cmd.AddCommand(learnTeachCmd())
	cmd.AddCommand(learnForgetCmd())

	return cmd
}

func learnListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [target]",
		Short: "List learned extension mappings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			targetArg := ""
			if len(args) > 0 {
				targetArg = args[0]
			}
			targetRoot, err := resolveTarget(targetArg)
			if err != nil {
				return err
			}

			store, _, err := openStore(targetRoot)
			if err != nil {
				return err
			}

			extensions := store.Extensions()
			if len(extensions) == 0 {
				fmt.Println(cli.FormatInfo("Nothing learned yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("Extension"),
				headerStyle.Render("Category"),
				headerStyle.Render("Confidence"),
				headerStyle.Render("Source"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 9),
				strings.Repeat("-", 20),
				strings.Repeat("-", 10),
				strings.Repeat("-", 20))

			for _, ext := range extensions {
				entry, ok := store.Entry(ext)
				if !ok {
					continue
				}
				confidence := fmt.Sprintf("%d", entry.Confidence)
				if entry.Source == model.SourceDefault {
					confidence = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ext, entry.Category, confidence, entry.Source)

				for _, conflict := range store.Conflicts(ext) {
					fmt.Fprintf(w, "  conflict\t%s\t\t%s\n", conflict.Category, conflict.Source)
				}
			}
			return nil
		},
	}
}

func learnTeachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teach <extension> <category> [target]",
		Short: "Teach a category for an extension",
		Long:  `Records a user-taught mapping, e.g. 'tidy learn teach .sketch image_files'.`,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			ext := strings.ToLower(args[0])
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cat := model.CategoryKey(args[1])

			targetArg := ""
			if len(args) > 2 {
				targetArg = args[2]
			}
			targetRoot, err := resolveTarget(targetArg)
			if err != nil {
				return err
			}

			store, table, err := openStore(targetRoot)
			if err != nil {
				return err
			}
			if _, ok := table.ByKey(cat); !ok {
				return fmt.Errorf("unknown category %q; see 'tidy categories'", cat)
			}

			// An explicit teach that contradicts existing learning is an
			// override, the strongest signal there is.
			if entry, ok := store.Entry(ext); ok && entry.Source != model.SourceDefault && entry.Category != cat {
				if err := store.RecordOverride(ext, entry.Category, cat); err != nil {
					return err
				}
			} else if err := store.RecordTeaching(ext, cat); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s → %s", ext, cat)))
			return nil
		},
	}
}

func learnForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <extension> [target]",
		Short: "Forget the learned mapping for an extension",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			ext := strings.ToLower(args[0])
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}

			targetArg := ""
			if len(args) > 1 {
				targetArg = args[1]
			}
			targetRoot, err := resolveTarget(targetArg)
			if err != nil {
				return err
			}

			store, _, err := openStore(targetRoot)
			if err != nil {
				return err
			}
			if err := store.Forget(ext); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Forgot %s", ext)))
			return nil
		},
	}
}
