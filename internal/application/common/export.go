package common

import (
	"bytes"
	"time"

	"github.com/doorsets/backend/internal/infrastructure/export"
)

// ExportFile is a rendered spreadsheet ready to download
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// RenderExport writes table in format and names the file after base and the current date
func RenderExport(table export.Table, format export.Format, base string, now time.Time) (*ExportFile, error) {
	var buf bytes.Buffer
	if err := export.Write(&buf, format, table); err != nil {
		return nil, err
	}
	return &ExportFile{
		FileName:    format.FileName(base, now),
		ContentType: format.ContentType(),
		Content:     buf.Bytes(),
	}, nil
}
