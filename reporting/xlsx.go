package reporting

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/ledger"
	"github.com/xuri/excelize/v2"
)

const (
	SheetTrialBalance = "Trial Balance"
	SheetInventory    = "Inventory"
	SheetJournal      = "Journal"
)

// WorkbookContentType is the MIME type of the file WriteWorkbook produces.
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook writes an xlsx workbook with the trial balance, the
// inventory and the journal (newest first) to w.
func WriteWorkbook(w io.Writer, data ledger.ERPData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTrialBalance); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetInventory, SheetJournal} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	tb := TrialBalance(data.Ledger)
	rows := [][]interface{}{{"Account", "Debit", "Credit", "Net", "Side"}}
	for _, r := range tb.Rows {
		rows = append(rows, []interface{}{r.Account, num(r.Debit), num(r.Credit), num(r.Net), string(r.Side)})
	}
	rows = append(rows, []interface{}{"TOTAL", num(tb.TotalDebit), num(tb.TotalCredit)})
	if err := writeRows(f, SheetTrialBalance, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Name", "SKU", "Quantity", "Average Cost", "Selling Price", "Stock Value", "Status"}}
	for _, r := range Inventory(data.Products) {
		rows = append(rows, []interface{}{
			r.Name, r.SKU, num(r.Quantity), num(r.AverageCost), num(r.SellingPrice), num(r.Value), string(r.Status),
		})
	}
	if err := writeRows(f, SheetInventory, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Date", "Transaction", "Description", "Account", "Debit", "Credit"}}
	for _, e := range LedgerNewestFirst(data.Ledger) {
		rows = append(rows, []interface{}{
			e.Date.Format("2006-01-02 15:04:05"), e.TransactionID, e.Description, e.Account, num(e.Debit), num(e.Credit),
		})
	}
	if err := writeRows(f, SheetJournal, rows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// num converts for spreadsheet cells, which are binary floats anyway.
func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
