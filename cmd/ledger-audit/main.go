package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/models/reports"
)

// ledger-audit prints the running balance of one counterparty, every entry
// included, so you can see exactly which row moves the balance.
//
// Example:
//
//	go run ./cmd/ledger-audit/ -tipo=mina -id=12
//	go run ./cmd/ledger-audit/ -tipo=rodmar -id=all -perspectiva=rodmar
func main() {
	tipo := flag.String("tipo", "", "Required: mina, comprador, volquetero, rodmar or banco")
	id := flag.String("id", "", "Counterparty id; all (or empty for rodmar/banco) aggregates the type")
	perspectiva := flag.String("perspectiva", "self", "self or rodmar (inverted)")
	limit := flag.Int("limit", 0, "Max rows to print, newest kept (0 = no limit)")
	flag.Parse()

	p, err := models.ParsePartyPath(*tipo, *id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	rows, balance, err := reports.AuditCounterparty(context.Background(), p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit failed: %v\n", err)
		os.Exit(1)
	}
	if *limit > 0 && len(rows) > *limit {
		rows = rows[len(rows)-*limit:]
	}

	fmt.Printf("party=%s entries=%d\n", p, len(rows))
	fmt.Printf("%-10s %-22s %-9s %14s %14s  %s\n", "fecha", "id", "estado", "contribucion", "acumulado", "concepto")
	for _, r := range rows {
		flags := ""
		if r.Entry.Hidden {
			flags = " [oculta]"
		}
		fmt.Printf("%-10s %-22s %-9s %14s %14s  %s%s\n",
			r.Entry.Fecha, r.Entry.ID, r.Entry.Estado,
			r.Contribution.StringFixed(2), r.Running.StringFixed(2), r.Entry.Concepto, flags)
	}

	if *perspectiva == string(reports.PerspectiveRodMar) {
		balance = ledger.Invert(balance)
	}
	fmt.Printf("positivos=%s negativos=%s balance=%s (%s)\n",
		balance.Positivos.StringFixed(2), balance.Negativos.StringFixed(2), balance.Balance.StringFixed(2), *perspectiva)
}
