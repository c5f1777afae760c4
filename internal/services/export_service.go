package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/allforone/afo-portal/internal/models"
	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	now func() time.Time
}

func NewExportService() *ExportService {
	return &ExportService{now: time.Now}
}

var duesColumns = []string{"Mois", "Membre", "Montant (Fcfa)", "Statut", "Date Paiement", "Méthode"}

func duesRows(dues []models.Cotisation, members []models.Member) [][]any {
	sorted := make([]models.Cotisation, len(dues))
	copy(sorted, dues)
	SortMonthsDesc(sorted, func(c models.Cotisation) string { return c.Mois })

	names := MemberNames(members)
	rows := make([][]any, 0, len(sorted))
	for _, c := range sorted {
		date := ""
		if c.DatePaiement != nil {
			date = c.DatePaiement.Format("2006-01-02")
		}
		rows = append(rows, []any{c.Mois, OwnerName(c, names), c.Montant, c.StatusLabel(), date, c.MethodePaiement})
	}
	return rows
}

// DuesCSV exports every dues record, most recent month first.
func (s *ExportService) DuesCSV(dues []models.Cotisation, members []models.Member) (*Report, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if err := writer.Write(duesColumns); err != nil {
		return nil, err
	}
	for _, row := range duesRows(dues, members) {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return &Report{
		Kind:        models.ReportCSV,
		FileName:    fmt.Sprintf("Cotisations_%s.csv", s.now().Format("2006-01-02")),
		ContentType: contentTypeCSV,
		Data:        buf.Bytes(),
	}, nil
}

// DuesWorkbook exports a workbook with a summary sheet, the monthly roll-up
// and the full dues list.
func (s *ExportService) DuesWorkbook(monthly []models.MonthlyStat, dues []models.Cotisation, members []models.Member, global models.GlobalStats) (*Report, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Résumé"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#3B82F6"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summary, "A1", "Rapport des Cotisations")
	_ = f.SetCellStyle(summary, "A1", "A1", titleStyle)
	_ = f.SetCellValue(summary, "A2", "Généré le "+s.now().Format("02/01/2006"))

	_ = f.SetCellValue(summary, "A4", "Indicateur")
	_ = f.SetCellValue(summary, "B4", "Valeur")
	_ = f.SetCellStyle(summary, "A4", "B4", headerStyle)

	indicators := [][2]any{
		{"Total cotisations", global.TotalCotisations},
		{"Payées", global.TotalPaye},
		{"En attente", global.TotalEnAttente},
		{"Montant payé (Fcfa)", global.MontantTotal},
		{"Montant attendu (Fcfa)", global.MontantAttendu},
		{"Taux de paiement (%)", global.TauxPaiement},
		{"Taux de recouvrement (%)", global.TauxRecouvrement},
	}
	for i, ind := range indicators {
		row := i + 5
		_ = f.SetCellValue(summary, fmt.Sprintf("A%d", row), ind[0])
		_ = f.SetCellValue(summary, fmt.Sprintf("B%d", row), ind[1])
	}
	_ = f.SetColWidth(summary, "A", "A", 28)

	months := "Mensuel"
	if _, err := f.NewSheet(months); err != nil {
		return nil, err
	}
	if err := writeSheetRows(f, months, headerStyle,
		[]string{"Mois", "Total", "Payées", "En Attente", "Montant Payé (Fcfa)", "Montant Attendu (Fcfa)", "Taux (%)"},
		monthlyRows(monthly)); err != nil {
		return nil, err
	}

	list := "Cotisations"
	if _, err := f.NewSheet(list); err != nil {
		return nil, err
	}
	if err := writeSheetRows(f, list, headerStyle, duesColumns, duesRows(dues, members)); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(list, "B", "B", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return &Report{
		Kind:        models.ReportXLSX,
		FileName:    fmt.Sprintf("Cotisations_%s.xlsx", s.now().Format("2006-01-02")),
		ContentType: contentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

func monthlyRows(monthly []models.MonthlyStat) [][]any {
	rows := make([][]any, 0, len(monthly))
	for _, m := range monthly {
		rows = append(rows, []any{m.Mois, m.Total, m.Payes, m.EnAttente, m.MontantPaye, m.MontantAttendu, m.TauxPaiement})
	}
	return rows
}

func writeSheetRows(f *excelize.File, sheet string, headerStyle int, header []string, rows [][]any) error {
	for i, title := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheet, cell, title)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
