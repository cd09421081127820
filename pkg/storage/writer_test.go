package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kudusch/twitter-user-stats/pkg/normalize"
)

func userRecord(id, screenName string) normalize.Record {
	return normalize.Record{
		"user_id":     id,
		"screen_name": screenName,
		"queried_at":  "1700000000",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteUsersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")

	err := WriteUsers([]normalize.Record{userRecord("1", "alice")}, path, false)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, normalize.UserColumns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "alice", rows[1][1])
}

func TestWriteAppendHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")

	require.NoError(t, WriteUsers([]normalize.Record{userRecord("1", "alice")}, path, true))
	require.NoError(t, WriteUsers([]normalize.Record{userRecord("2", "bob")}, path, true))
	require.NoError(t, WriteUsers([]normalize.Record{userRecord("3", "carol")}, path, true))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, normalize.UserColumns, rows[0])
	for _, row := range rows[1:] {
		assert.NotEqual(t, normalize.UserColumns, row)
	}
}

func TestWriteAppendToEmptyFileWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	require.NoError(t, WriteUsers([]normalize.Record{userRecord("1", "alice")}, path, true))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, normalize.UserColumns, rows[0])
}

func TestWriteOverwriteReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")

	require.NoError(t, WriteUsers([]normalize.Record{userRecord("1", "alice")}, path, false))
	require.NoError(t, WriteUsers([]normalize.Record{userRecord("2", "bob")}, path, false))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[1][0])
}

func TestWriteEmptyIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")

	require.NoError(t, WriteUsers(nil, path, true))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "users.csv")

	require.NoError(t, WriteUsers([]normalize.Record{userRecord("1", "alice")}, path, true))

	rows := readCSV(t, path)
	assert.Len(t, rows, 2)
}

func TestWriteTweetsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.csv")

	record := normalize.Record{"status_id": "t1", "text": "hello, \"world\"\nnewline"}
	require.NoError(t, WriteTweets([]normalize.Record{record}, path, false))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, normalize.TweetColumns, rows[0])
	assert.Len(t, rows[1], len(normalize.TweetColumns))
	assert.Equal(t, "hello, \"world\"\nnewline", rows[1][2])
}

func TestReadRecordsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")

	require.NoError(t, WriteUsers([]normalize.Record{
		userRecord("1", "alice"),
		userRecord("2", "bob"),
	}, path, false))

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0]["screen_name"])
	assert.Equal(t, "2", records[1]["user_id"])
	assert.Equal(t, "", records[0]["description"])
}

func TestReadRecordsMissingFile(t *testing.T) {
	_, err := ReadRecords(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestCountRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")

	require.NoError(t, WriteUsers([]normalize.Record{
		userRecord("1", "alice"),
		userRecord("2", "bob"),
	}, path, true))

	count, err := CountRecords(path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCountRecordsMissingFile(t *testing.T) {
	_, err := CountRecords(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
