// Package cv renders the downloadable CV as a PDF.
package cv

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/Zachkp/folio/internal/catalog"
)

// Translate resolves a dictionary key in the CV's language.
type Translate func(key string) string

// Options tweak the document metadata.
type Options struct {
	Author string
	// Title defaults to the menu.title string.
	Title string
}

const (
	margin     = 18.0
	lineHeight = 5.5
)

var accent = [3]int{63, 81, 181}

// Write renders cat as an A4 PDF to w. Built-in Helvetica keeps the file
// small; text goes through the cp1252 translator so Finnish characters
// survive.
func Write(w io.Writer, cat *catalog.Catalog, t Translate, opt Options) error {
	if cat == nil {
		return fmt.Errorf("cv: nil catalog")
	}
	if t == nil {
		t = func(k string) string { return k }
	}
	title := opt.Title
	if title == "" {
		title = t("menu.title")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.CellFormat(0, 10, tr(t("home.greeting")), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 7, tr(t("home.role")+"  |  "+t("home.location")), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	body(pdf, tr, t("home.intro"))

	heading(pdf, tr, t("about.title"))
	body(pdf, tr, t("about.p1"))
	body(pdf, tr, t("about.p2"))

	if len(cat.Skills) > 0 {
		heading(pdf, tr, t("about.software"))
		for _, s := range cat.Skills {
			skillBar(pdf, tr, s)
		}
	}

	heading(pdf, tr, t("experience.title"))
	for _, j := range cat.Jobs {
		entry(pdf, tr, j.Title, j.Company, j.Period, j.Description)
	}

	heading(pdf, tr, t("education.title"))
	for _, s := range cat.Schools {
		entry(pdf, tr, s.Degree, s.University, s.Period, s.Description)
	}

	if len(cat.Projects) > 0 {
		heading(pdf, tr, t("works.title"))
		for _, p := range cat.Projects {
			sub := p.ProjectType
			if p.Client != "" {
				sub = p.Client + " / " + sub
			}
			entry(pdf, tr, p.Title, sub, strings.Join(p.Tools, ", "), p.Description)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("cv: %w", err)
	}
	return pdf.Output(w)
}

func heading(pdf *gofpdf.Fpdf, tr func(string) string, s string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.CellFormat(0, 8, tr(s), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func body(pdf *gofpdf.Fpdf, tr func(string) string, s string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	pdf.MultiCell(0, lineHeight, tr(s), "", "L", false)
	pdf.Ln(1)
}

func entry(pdf *gofpdf.Fpdf, tr func(string) string, title, sub, period, desc string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(20, 20, 20)
	w, _ := pdf.GetPageSize()
	pdf.CellFormat(w-2*margin-45, 6, tr(title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(45, 6, tr(period), "", 1, "R", false, 0, "")
	if sub != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 5, tr(sub), "", 1, "L", false, 0, "")
	}
	if desc != "" {
		body(pdf, tr, desc)
	}
	pdf.Ln(1)
}

func skillBar(pdf *gofpdf.Fpdf, tr func(string) string, s catalog.Skill) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	pdf.CellFormat(50, 6, tr(s.Name), "", 0, "L", false, 0, "")
	x, y := pdf.GetXY()
	const width = 80.0
	pdf.SetFillColor(225, 225, 240)
	pdf.Rect(x, y+1.5, width, 3, "F")
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.Rect(x, y+1.5, width*float64(s.Level)/100, 3, "F")
	pdf.SetXY(x+width+4, y)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d%%", s.Level), "", 1, "L", false, 0, "")
}
