package kebapi

// Paging is a normalized row window
type Paging struct {
	StartRow int
	RowCount int
}

// NormalizePaging clamps a requested row window into the configured bounds.
// Out-of-range values are corrected rather than rejected so list endpoints
// always have something sensible to work with.
func NormalizePaging(settings PagingSettings, startRow, rowCount int) Paging {
	if startRow < settings.MinStartRow {
		startRow = settings.MinStartRow
	}

	if rowCount < settings.MinRowCount {
		rowCount = settings.MinRowCount
	}

	if rowCount > settings.MaxRowCount {
		rowCount = settings.MaxRowCount
	}

	return Paging{
		StartRow: startRow,
		RowCount: rowCount,
	}
}
