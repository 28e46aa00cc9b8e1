package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Supported file types, keyed by lower-cased extension
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
	FileTypeXLS  = "xls"
)

// FileTypeFor returns the reader file type for a path, or "" when the extension is not supported
func FileTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FileTypeCSV
	case ".xlsx":
		return FileTypeXLSX
	case ".xls":
		return FileTypeXLS
	}
	return ""
}

// DataReader handles reading spreadsheet and CSV files
type DataReader struct {
	filePath string
	fileType string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	return &DataReader{filePath: filePath, fileType: FileTypeFor(filePath)}
}

// FileType returns the detected file type
func (r *DataReader) FileType() string {
	return r.fileType
}

// ReadData reads the file into headers and string rows.
// A header row with no data rows is valid and yields zero rows.
func (r *DataReader) ReadData() (*RawData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, fmt.Errorf("%s file not accessible: %w", strings.ToUpper(r.fileType), err)
	}

	switch r.fileType {
	case FileTypeCSV:
		return r.readCSVData()
	case FileTypeXLSX, FileTypeXLS:
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(r.filePath))
	}
}

// readExcelData reads the first worksheet. Legacy binary .xls workbooks are
// not readable by excelize and surface as an open error.
func (r *DataReader) readExcelData() (*RawData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheets[0], float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*RawData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows splits the header row from the data rows and aligns every row to the header width
func (r *DataReader) processRows(rows [][]string) (*RawData, error) {
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, fmt.Errorf("%s file has no header row", strings.ToUpper(r.fileType))
	}

	headers := normalizeHeaders(rows[0])

	dataRows := make([]RawRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) > len(headers) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(headers))
		}
		// spreadsheet rows drop trailing empty cells; CSV blank lines are skipped by encoding/csv
		aligned := make(RawRow, len(headers))
		for j, cell := range row {
			aligned[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, aligned)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &RawData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// normalizeHeaders trims names, names blank headers "Unnamed: i" and
// suffixes repeated names with ".1", ".2", ...
func normalizeHeaders(headerRow []string) []string {
	headers := make([]string, len(headerRow))
	seen := make(map[string]int, len(headerRow))
	for i, header := range headerRow {
		name := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for seen[name] > 0 {
			name = base + "." + strconv.Itoa(seen[base])
			seen[base]++
		}
		seen[name]++
		headers[i] = name
	}
	return headers
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
