package reporting

// ExcelStyles holds the named excelize style IDs shared across sheets in
// one report workbook.
type ExcelStyles struct {
	HeaderStyle       int
	CurrencyStyle     int
	PercentStyle      int
	BaseStyle         int
	RedPercentStyle   int
	GreenPercentStyle int
	SummaryStyle      int
}
