// Package dataprocessing turns raw B3 report text into the daily series every
// analysis consumes.
//
// # Flow reports
//
// B3 publishes investor participation ("Participação dos Investidores") as
// month-to-date accumulated figures. Each report carries its reference date in
// free text within the first lines:
//
//	Dados acumulados do início do mês até o dia 15/03/2024
//
// Data lines are semicolon-delimited with pt-BR numbers:
//
//	Estrangeiro;12.345.678,90;51,2;11.234.567,00;48,8
//
// Column 0 is the investor category, column 1 the accumulated buys and column 3
// the accumulated sells, in thousands of BRL.
//
// # Daily reconstruction
//
// Rows from every uploaded file are merged and ordered by (date, category), so
// the result never depends on upload order. Daily values are the difference
// between consecutive report dates, except on the first date of the batch, when
// the category is missing on the preceding date, or when the preceding date is
// in another month. In those cases the accumulated value itself is the daily
// value, since B3 resets the accumulation at the start of every month.
//
// # Price quotes
//
// WINFUT intraday quotes exported as
//
//	Ativo;Data;Hora;Abertura;Máximo;Mínimo;Fechamento;Volume;Quantidade
//
// are aggregated into one bar per day and enriched with point change, percent
// change and range by ComputeDerivedChanges.
//
// # Error Handling
//
// A file without a date marker or a row with malformed numbers is skipped and
// reported as a domain.IngestionWarning; the batch continues. Only an upload
// that yields no valid record at all fails, with ErrNoValidRecords.
package dataprocessing
