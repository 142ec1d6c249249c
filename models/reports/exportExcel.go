package reports

import (
	"context"
	"fmt"
	"io"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Transacciones"

var exportHeaders = []string{"Fecha", "Concepto", "De quien", "Para quien", "Valor", "Estado", "Forma de pago", "Comentario", "Tipo"}

// ExportCounterparty writes the listed entries of a counterparty view as an
// xlsx workbook, with the signed amount seen from the counterparty and the
// two balances at the bottom.
func ExportCounterparty(ctx context.Context, req CounterpartyRequest, w io.Writer) error {
	ctx, span := tracer.Start(ctx, "reports.ExportCounterparty")
	defer span.End()

	listing, err := ListCounterpartyEntries(ctx, req)
	if err != nil {
		span.RecordError(err)
		return err
	}
	f, err := BuildWorkbook(listing, req.Party)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func BuildWorkbook(listing *CounterpartyListing, p ledger.Party) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	for i, h := range exportHeaders {
		if err := setCell(f, i+1, 1, h); err != nil {
			return nil, err
		}
	}
	rules := ledger.DefaultRules
	row := 2
	for _, e := range listing.Listed {
		values := []interface{}{
			e.Fecha,
			e.Concepto,
			partyLabel(e.DeQuien, e.DeQuienNombre),
			partyLabel(e.ParaQuien, e.ParaQuienNombre),
			rules.Contribution(e, p).InexactFloat64(),
			string(e.Estado),
			e.FormaPago,
			e.Comentario,
			string(e.Kind),
		}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, err
			}
		}
		row++
	}
	row++
	totals := []struct {
		label string
		b     ledger.Balance
	}{
		{"Balance total", listing.Balance.Header},
		{"Balance filtrado", listing.Balance.Filtered},
	}
	for _, t := range totals {
		if err := setCell(f, 4, row, t.label); err != nil {
			return nil, err
		}
		if err := setCell(f, 5, row, t.b.Balance.InexactFloat64()); err != nil {
			return nil, err
		}
		row++
	}
	return f, nil
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(exportSheet, cell, v)
}

func partyLabel(p ledger.Party, name string) string {
	if name != "" {
		return name
	}
	return p.String()
}

func ExportFilename(p ledger.Party) string {
	id := p.Id
	if id == "" {
		id = "todos"
	}
	return fmt.Sprintf("transacciones-%s-%s.xlsx", p.Tipo, id)
}
