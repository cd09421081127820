// Package storage persists flattened records as CSV tables. Append
// mode is the backbone of incremental archiving: pages are flushed as
// they arrive, and the header is written exactly once per file.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Kudusch/twitter-user-stats/pkg/logger"
	"github.com/Kudusch/twitter-user-stats/pkg/metrics"
	"github.com/Kudusch/twitter-user-stats/pkg/normalize"
)

// WriteTweets writes tweet records to path in the flat tweet schema
func WriteTweets(records []normalize.Record, path string, append bool) error {
	return writeRecords(records, normalize.TweetColumns, path, append, "tweets")
}

// WriteUsers writes user records to path in the user schema
func WriteUsers(records []normalize.Record, path string, append bool) error {
	return writeRecords(records, normalize.UserColumns, path, append, "users")
}

func writeRecords(records []normalize.Record, columns []string, path string, append bool, kind string) error {
	if len(records) == 0 {
		logger.WithField("path", path).Warn("No records to write")
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	needHeader := true
	flags := os.O_CREATE | os.O_WRONLY
	if append {
		flags |= os.O_APPEND
		// On append the header is only written into a new or empty file
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			needHeader = false
		}
	} else {
		flags |= os.O_TRUNC
		if _, err := os.Stat(path); err == nil {
			logger.WithField("path", path).Warn("Overwriting existing file")
		}
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if needHeader {
		if err := writer.Write(columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, record := range records {
		if err := writer.Write(record.Row(columns)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}

	logger.LogWrite(path, len(records), append)
	metrics.AddRows(kind, len(records))

	return nil
}

// ReadRecords loads a previously written CSV file back into records,
// keyed by its own header row.
func ReadRecords(path string) ([]normalize.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]normalize.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(normalize.Record, len(header))
		for i, column := range header {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// CountRecords returns the number of data rows in a CSV file, not
// counting the header.
func CountRecords(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	count := 0
	for {
		_, err := reader.Read()
		if err != nil {
			break
		}
		count++
	}

	if count == 0 {
		return 0, nil
	}
	return count - 1, nil
}
