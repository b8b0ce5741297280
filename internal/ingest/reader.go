// Package ingest loads long-format capability scores from CSV or XLSX files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/ainavigator/backend/internal/capability"
	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Format is a supported upload file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat picks a format from a file name extension
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, filename)
	}
}

// Defaults fill columns a file leaves empty
type Defaults struct {
	CompanyID      string
	SurveyWave     string
	AssessmentDate time.Time
	// LockCompany rejects rows whose company_id differs from CompanyID
	LockCompany bool
}

// Read parses a whole file. The first row is the header. Any bad row
// aborts with ErrInvalidRecord naming its line.
func Read(r io.Reader, format Format, defaults Defaults) ([]contracts.ScoreRecord, error) {
	d := &decoder{defaults: defaults, records: make([]contracts.ScoreRecord, 0)}
	if err := readRows(r, format, d); err != nil {
		return nil, err
	}
	return d.records, nil
}

// rowSink receives a file's header once, then every following row
type rowSink interface {
	setHeader(columns []string) error
	add(line int, row []string) error
}

func readRows(r io.Reader, format Format, sink rowSink) error {
	switch format {
	case FormatCSV:
		return readCSV(r, sink)
	case FormatXLSX:
		return readXLSX(r, sink)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readCSV(r io.Reader, sink rowSink) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty file", contracts.ErrInvalidRecord)
	}
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	if err := sink.setHeader(header); err != nil {
		return err
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if err := sink.add(line, row); err != nil {
			return err
		}
	}

	return nil
}

func readXLSX(r io.Reader, sink rowSink) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("%w: workbook has no sheets", contracts.ErrInvalidRecord)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	headerSeen := false
	line := 0
	for rows.Next() {
		line++
		cols, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("read row %d: %w", line, err)
		}
		if !headerSeen {
			if err := sink.setHeader(cols); err != nil {
				return err
			}
			headerSeen = true
			continue
		}
		if err := sink.add(line, cols); err != nil {
			return err
		}
	}
	if err := rows.Error(); err != nil {
		return fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if !headerSeen {
		return fmt.Errorf("%w: empty sheet", contracts.ErrInvalidRecord)
	}

	return nil
}

type decoder struct {
	header   capability.Header
	defaults Defaults
	records  []contracts.ScoreRecord
}

func (d *decoder) setHeader(columns []string) error {
	h, err := capability.NewHeader(columns)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	d.header = h
	return nil
}

func (d *decoder) add(line int, row []string) error {
	if blank(row) {
		return nil
	}

	rec, err := capability.DecodeRow(d.header, row)
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}

	if err := d.defaults.apply(line, &rec.CompanyID, &rec.SurveyWave, &rec.AssessmentDate); err != nil {
		return err
	}

	d.records = append(d.records, rec)
	return nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// apply fills empty row keys from the defaults and enforces LockCompany
func (d Defaults) apply(line int, companyID, wave *string, date *time.Time) error {
	switch {
	case *companyID == "":
		*companyID = d.CompanyID
	case d.LockCompany && *companyID != d.CompanyID:
		return fmt.Errorf("line %d: %w: company_id %q does not match %q",
			line, contracts.ErrInvalidRecord, *companyID, d.CompanyID)
	}
	if *companyID == "" {
		return fmt.Errorf("line %d: %w: missing company_id", line, contracts.ErrInvalidRecord)
	}
	if *wave == "" {
		*wave = d.SurveyWave
	}
	if date.IsZero() {
		*date = d.AssessmentDate
	}
	return nil
}
