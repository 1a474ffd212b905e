package sync

// Config holds settings for reconciliation runs.
type Config struct {
	// WorkbookPath is the spreadsheet export to read.
	WorkbookPath string `mapstructure:"workbook_path" default:"company_data.xlsx"`
	// ReportPath is where the comparison report is written.
	ReportPath string `mapstructure:"report_path" default:"comparison_report.json"`
	// DryRun disables write-backs to the ledger when true.
	DryRun bool `mapstructure:"dry_run" default:"false"`
}
