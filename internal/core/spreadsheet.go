package core

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelContentTypes are the MIME types accepted for import.
var excelContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
	"application/vnd.ms-excel.sheet.macroenabled.12":                    true,
}

// isExcelContentType reports whether the declared type is an Excel workbook.
// Generic binary uploads are accepted when the file name has an Excel extension.
func isExcelContentType(contentType, fileName string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	mediaType = strings.ToLower(mediaType)
	if excelContentTypes[mediaType] {
		return true
	}
	if mediaType == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".xlsx", ".xlsm":
			return true
		}
	}
	return false
}

// readFirstSheet returns the raw rows of the workbook's first sheet.
// Cells keep their stored value so dates arrive as serial numbers, not
// as whatever display format the author picked.
func readFirstSheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open workbook: no sheet")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
