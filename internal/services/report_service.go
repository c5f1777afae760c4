package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/allforone/afo-portal/internal/config"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/jung-kurt/gofpdf"
)

// Report is a rendered report file.
type Report struct {
	Kind        string
	Mois        string
	FileName    string
	ContentType string
	Data        []byte
}

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// ContentTypeFor returns the MIME type of a report kind.
func ContentTypeFor(kind string) string {
	switch kind {
	case models.ReportMonthly, models.ReportGlobal:
		return contentTypePDF
	case models.ReportXLSX:
		return contentTypeXLSX
	case models.ReportCSV:
		return contentTypeCSV
	}
	return "application/octet-stream"
}

const defaultTagline = "Association pour l'éducation des enfants défavorisés"

type rgb struct{ r, g, b int }

var (
	colorPrimary = rgb{59, 130, 246}
	colorSuccess = rgb{34, 197, 94}
	colorDanger  = rgb{239, 68, 68}
	colorWarning = rgb{251, 146, 60}
	colorBlack   = rgb{0, 0, 0}
	colorWhite   = rgb{255, 255, 255}
	colorFooter  = rgb{128, 128, 128}
	colorPanel   = rgb{245, 245, 245}
	colorTrack   = rgb{220, 220, 220}
	colorGrid    = rgb{200, 200, 200}
)

const (
	pageWidth    = 210.0
	marginLeft   = 14.0
	contentWidth = 182.0
	bottomMargin = 20.0
	tableRowH    = 7.0
	tableHeaderH = 8.0
	fontFamily   = "Helvetica"
)

// ReportService renders dues reports. Rendering is pure: no I/O happens
// besides building the bytes, and gofpdf errors are returned as is.
type ReportService struct {
	association string
	tagline     string
	now         func() time.Time
}

// NewReportService creates a new report service
func NewReportService(cfg *config.Config) *ReportService {
	name := "AFO - All For One"
	if cfg != nil && cfg.AssociationName != "" {
		name = cfg.AssociationName
	}
	return &ReportService{association: name, tagline: defaultTagline, now: time.Now}
}

// MonthlyReport renders the report of one month: stat cards, amounts, the
// payment rate bar and the detail of every dues record of that month.
func (s *ReportService) MonthlyReport(stat models.MonthlyStat, dues []models.Cotisation, members []models.Member) (*Report, error) {
	now := s.now()
	doc := s.newDocument(now)
	monthName := MonthLong(stat.Mois)

	doc.centerText(55, 18, "B", colorBlack, "Rapport Mensuel - "+monthName)

	y := 70.0
	doc.text(marginLeft, y, 14, "B", colorBlack, "Résumé des Cotisations")
	y += 10

	doc.statCard(14, y, 60, 25, 10, 16, "Total Cotisations", fmt.Sprint(stat.Total), colorPrimary)
	doc.statCard(80, y, 60, 25, 10, 16, "Payées", fmt.Sprint(stat.Payes), colorSuccess)
	doc.statCard(146, y, 60, 25, 10, 16, "En Attente", fmt.Sprint(stat.EnAttente), colorDanger)
	y += 35

	doc.fill(colorPanel)
	doc.pdf.Rect(marginLeft, y, contentWidth, 25, "F")
	doc.text(20, y+8, 11, "B", colorBlack, "Montants (Fcfa):")
	doc.text(20, y+16, 11, "", colorSuccess, fmt.Sprintf("Payé: %s Fcfa", FormatAmount(stat.MontantPaye)))
	doc.text(100, y+16, 11, "", colorDanger, fmt.Sprintf("Attendu: %s Fcfa", FormatAmount(stat.MontantAttendu)))
	y += 35

	rate := Percentage(int64(stat.Payes), int64(stat.Total))
	doc.text(marginLeft, y, 12, "B", colorBlack, fmt.Sprintf("Taux de paiement: %d%%", rate))
	y += 5
	doc.progressBar(marginLeft, y, contentWidth, 8, rate)
	y += 18

	doc.text(marginLeft, y, 14, "B", colorBlack, "Détails des Cotisations")
	y += 5

	names := MemberNames(members)
	monthDues := FilterByMonth(dues, stat.Mois)
	rows := make([][]string, 0, len(monthDues))
	for _, c := range monthDues {
		methode := c.MethodePaiement
		if methode == "" {
			methode = "-"
		}
		rows = append(rows, []string{
			OwnerName(c, names),
			FormatAmount(c.Montant) + " Fcfa",
			c.StatusLabel(),
			FormatDate(c.DatePaiement),
			methode,
		})
	}

	doc.table(y, tableSpec{
		columns: []tableColumn{
			{title: "Membre", width: 50, align: "L"},
			{title: "Montant", width: 35, align: "R"},
			{title: "Statut", width: 30, align: "C"},
			{title: "Date Paiement", width: 35, align: "C"},
			{title: "Méthode", width: 30, align: "C"},
		},
		rows:       rows,
		striped:    true,
		headerSize: 10,
		bodySize:   9,
		cellStyle:  statusCellStyle(2),
	})

	data, err := doc.output()
	if err != nil {
		return nil, err
	}

	return &Report{
		Kind:        models.ReportMonthly,
		Mois:        stat.Mois,
		FileName:    fmt.Sprintf("Rapport_%s_%d.pdf", underscoreSpaces(monthName), now.UnixMilli()),
		ContentType: contentTypePDF,
		Data:        data,
	}, nil
}

// GlobalReport renders the global report: headline cards, the monthly
// roll-up and, on a new page, every dues record most recent month first.
func (s *ReportService) GlobalReport(monthly []models.MonthlyStat, dues []models.Cotisation, members []models.Member, global models.GlobalStats) (*Report, error) {
	now := s.now()
	doc := s.newDocument(now)

	doc.centerText(55, 18, "B", colorBlack, "Rapport Global des Cotisations")

	y := 70.0
	doc.text(marginLeft, y, 14, "B", colorBlack, "Statistiques Globales")
	y += 10

	doc.statCard(14, y, 45, 22, 8, 14, "Total", ShortCount(int64(global.TotalCotisations)), colorPrimary)
	doc.statCard(62, y, 45, 22, 8, 14, "Payées", ShortCount(int64(global.TotalPaye)), colorSuccess)
	doc.statCard(110, y, 45, 22, 8, 14, "En Attente", ShortCount(int64(global.TotalEnAttente)), colorDanger)
	doc.statCard(158, y, 45, 22, 8, 14, "Montant", fmt.Sprintf("%dk", roundDiv(global.MontantTotal, 1000)), colorWarning)
	y += 35

	doc.text(marginLeft, y, 14, "B", colorBlack, "Récapitulatif Mensuel")
	y += 5

	monthRows := make([][]string, 0, len(monthly))
	for _, m := range monthly {
		monthRows = append(monthRows, []string{
			MonthShort(m.Mois),
			fmt.Sprint(m.Total),
			fmt.Sprint(m.Payes),
			fmt.Sprint(m.EnAttente),
			FormatAmount(m.MontantPaye) + " Fcfa",
			fmt.Sprintf("%d%%", Percentage(int64(m.Payes), int64(m.Total))),
		})
	}

	doc.table(y, tableSpec{
		columns: []tableColumn{
			{title: "Mois", width: 34, align: "C"},
			{title: "Total", width: 24, align: "C"},
			{title: "Payées", width: 26, align: "C"},
			{title: "En Attente", width: 30, align: "C"},
			{title: "Montant Payé", width: 42, align: "R"},
			{title: "Taux", width: 26, align: "C"},
		},
		rows:       monthRows,
		grid:       true,
		headerSize: 9,
		bodySize:   8,
		cellStyle: func(i int, row []string, col int) (rgb, string, bool) {
			if col != 5 {
				return rgb{}, "", false
			}
			return rateColor(Percentage(int64(monthly[i].Payes), int64(monthly[i].Total))), "B", true
		},
	})

	doc.pdf.AddPage()
	y = 20
	doc.text(marginLeft, y, 16, "B", colorBlack, "Liste Complète des Cotisations")
	y += 10

	sorted := make([]models.Cotisation, len(dues))
	copy(sorted, dues)
	SortMonthsDesc(sorted, func(c models.Cotisation) string { return c.Mois })

	names := MemberNames(members)
	rows := make([][]string, 0, len(sorted))
	for _, c := range sorted {
		rows = append(rows, []string{
			MonthShortYY(c.Mois),
			OwnerName(c, names),
			FormatAmount(c.Montant),
			c.StatusLabel(),
			FormatDayMonth(c.DatePaiement),
		})
	}

	doc.table(y, tableSpec{
		columns: []tableColumn{
			{title: "Mois", width: 25, align: "L"},
			{title: "Membre", width: 50, align: "L"},
			{title: "Montant", width: 30, align: "R"},
			{title: "Statut", width: 30, align: "C"},
			{title: "Date", width: 25, align: "C"},
		},
		rows:       rows,
		striped:    true,
		headerSize: 9,
		bodySize:   8,
		cellStyle:  statusCellStyle(3),
	})

	data, err := doc.output()
	if err != nil {
		return nil, err
	}

	return &Report{
		Kind:        models.ReportGlobal,
		FileName:    fmt.Sprintf("Rapport_Global_%s.pdf", now.Format("2006-01-02")),
		ContentType: contentTypePDF,
		Data:        data,
	}, nil
}

// statusCellStyle colors the status column: paid in green, anything else in
// red, both bold.
func statusCellStyle(col int) func(i int, row []string, c int) (rgb, string, bool) {
	return func(_ int, row []string, c int) (rgb, string, bool) {
		if c != col {
			return rgb{}, "", false
		}
		if row[c] == "Payé" {
			return colorSuccess, "B", true
		}
		return colorDanger, "B", true
	}
}

// rateColor grades a collection rate: green from 75%, orange from 50%.
func rateColor(rate int) rgb {
	switch {
	case rate >= 75:
		return colorSuccess
	case rate >= 50:
		return colorWarning
	default:
		return colorDanger
	}
}

func underscoreSpaces(s string) string {
	return strings.Join(strings.Fields(s), "_")
}

// document wraps a gofpdf document with the report chrome.
type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// newDocument opens an A4 document with the header band on the first page
// and the page footer on every page.
func (s *ReportService) newDocument(now time.Time) *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("{nb}")

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	association := s.association
	year := now.Year()
	pdf.SetFooterFunc(func() {
		_, pageH := pdf.GetPageSize()
		d.centerText(pageH-10, 8, "", colorFooter, fmt.Sprintf("Page %d sur {nb}", pdf.PageNo()))
		d.text(marginLeft, pageH-10, 8, "", colorFooter, fmt.Sprintf("%s © %d", association, year))
	})

	pdf.AddPage()

	d.fill(colorPrimary)
	pdf.Rect(0, 0, pageWidth, 40, "F")
	d.centerText(15, 24, "B", colorWhite, association)
	d.centerText(25, 12, "", colorWhite, s.tagline)
	d.centerText(33, 10, "", colorWhite, "Rapport généré le "+now.Format("02/01/2006"))

	return d
}

func (d *document) fill(c rgb) {
	d.pdf.SetFillColor(c.r, c.g, c.b)
}

func (d *document) color(c rgb) {
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

// text writes s with its baseline at y.
func (d *document) text(x, y, size float64, style string, c rgb, s string) {
	d.pdf.SetFont(fontFamily, style, size)
	d.color(c)
	d.pdf.Text(x, y, d.tr(s))
}

// centerText writes s centered on the page with its baseline at y.
func (d *document) centerText(y, size float64, style string, c rgb, s string) {
	d.centerTextAt(pageWidth/2, y, size, style, c, s)
}

func (d *document) centerTextAt(cx, y, size float64, style string, c rgb, s string) {
	d.pdf.SetFont(fontFamily, style, size)
	d.color(c)
	t := d.tr(s)
	d.pdf.Text(cx-d.pdf.GetStringWidth(t)/2, y, t)
}

// statCard draws a rounded colored box with a title and a headline value.
func (d *document) statCard(x, y, w, h, titleSize, valueSize float64, title, value string, c rgb) {
	d.fill(c)
	d.pdf.RoundedRect(x, y, w, h, 3, "1234", "F")
	titleY, valueY := y+8, y+18
	if h < 25 {
		titleY, valueY = y+7, y+16
	}
	d.centerTextAt(x+w/2, titleY, titleSize, "", colorWhite, title)
	d.centerTextAt(x+w/2, valueY, valueSize, "B", colorWhite, value)
}

// progressBar draws a track and a filled share of rate percent.
func (d *document) progressBar(x, y, w, h float64, rate int) {
	d.fill(colorTrack)
	d.pdf.Rect(x, y, w, h, "F")
	if rate <= 0 {
		return
	}
	if rate > 100 {
		rate = 100
	}
	d.fill(colorSuccess)
	d.pdf.Rect(x, y, w*float64(rate)/100, h, "F")
}

type tableColumn struct {
	title string
	width float64
	align string
}

type tableSpec struct {
	columns    []tableColumn
	rows       [][]string
	striped    bool
	grid       bool
	headerSize float64
	bodySize   float64
	// cellStyle overrides the color and font style of one body cell.
	cellStyle func(i int, row []string, col int) (rgb, string, bool)
}

// table draws a header row and the body starting at y, repeating the header
// after each page break. It returns the y below the last row.
func (d *document) table(y float64, spec tableSpec) float64 {
	pdf := d.pdf
	_, pageH := pdf.GetPageSize()
	limit := pageH - bottomMargin

	border := ""
	if spec.grid {
		border = "1"
		pdf.SetDrawColor(colorGrid.r, colorGrid.g, colorGrid.b)
		pdf.SetLineWidth(0.1)
	}

	header := func(y float64) float64 {
		pdf.SetXY(marginLeft, y)
		pdf.SetFont(fontFamily, "B", spec.headerSize)
		d.fill(colorPrimary)
		d.color(colorWhite)
		for _, col := range spec.columns {
			pdf.CellFormat(col.width, tableHeaderH, d.tr(col.title), border, 0, "C", true, 0, "")
		}
		return y + tableHeaderH
	}

	y = header(y)
	for i, row := range spec.rows {
		if y+tableRowH > limit {
			pdf.AddPage()
			y = header(20)
		}

		pdf.SetXY(marginLeft, y)
		fillRow := spec.striped && i%2 == 1
		if fillRow {
			d.fill(colorPanel)
		}
		for j, col := range spec.columns {
			c, style := colorBlack, ""
			if spec.cellStyle != nil {
				if sc, ss, ok := spec.cellStyle(i, row, j); ok {
					c, style = sc, ss
				}
			}
			pdf.SetFont(fontFamily, style, spec.bodySize)
			d.color(c)

			value := ""
			if j < len(row) {
				value = row[j]
			}
			pdf.CellFormat(col.width, tableRowH, d.tr(value), border, 0, col.align, fillRow, 0, "")
		}
		y += tableRowH
	}
	return y
}

// output closes the document and returns its bytes.
func (d *document) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
