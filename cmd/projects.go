package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/i18n"
)

func newProjectsCmd() *cobra.Command {
	var (
		filter     string
		lang       string
		categories bool
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the works catalog",
		Example: `  folio projects
  folio projects --filter "Web Design"
  folio projects --lang fi --categories`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(i18n.Normalize(lang))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if categories {
				for _, c := range catalog.Categories(cat.Projects) {
					fmt.Fprintln(out, c)
				}
				return nil
			}

			projects := catalog.Filter(cat.Projects, filter)
			if len(projects) == 0 {
				return fmt.Errorf("no projects in category %q", filter)
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tTITLE\tIMAGES\tTOOLS")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.ProjectType, p.Title, len(p.Images), strings.Join(p.Tools, ", "))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", catalog.All, "Only list projects of this type")
	cmd.Flags().StringVarP(&lang, "lang", "l", i18n.Default, "Catalog language")
	cmd.Flags().BoolVar(&categories, "categories", false, "List the filter categories instead")

	return cmd
}
