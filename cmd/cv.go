package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/cv"
	"github.com/Zachkp/folio/internal/i18n"
)

func newCVCmd() *cobra.Command {
	var (
		output string
		lang   string
		author string
	)

	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Render the CV as a PDF file",
		Example: `  folio cv -o cv.pdf
  folio cv --lang fi -o cv-fi.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang = i18n.Normalize(lang)
			cat, err := catalog.Load(lang)
			if err != nil {
				return err
			}
			tr, err := i18n.Load()
			if err != nil {
				return err
			}
			if output == "" {
				output = "cv-" + lang + ".pdf"
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(f)
			if err := cv.Write(w, cat, tr.For(lang), cv.Options{Author: author}); err != nil {
				f.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			st, err := os.Stat(output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", output, humanize.Bytes(uint64(st.Size())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default cv-<lang>.pdf)")
	cmd.Flags().StringVarP(&lang, "lang", "l", i18n.Default, "CV language")
	cmd.Flags().StringVar(&author, "author", "Jaakko", "Name printed in the header")

	return cmd
}
