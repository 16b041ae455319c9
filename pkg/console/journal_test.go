package console

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path, nil)
	require.NoError(t, err)
	defer j.Close()

	j.Record("asset", "create", 7, "srv1")
	j.Record("asset", "update", 7, "srv1")
	j.Record("asset", "delete", 7, "")

	got, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "delete", got[0].Verb)
	assert.Equal(t, "create", got[2].Verb)
	assert.Equal(t, int64(7), got[0].EntityID)
	assert.NotEmpty(t, got[0].ID)
}

func TestJournalRecentLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path, nil)
	require.NoError(t, err)
	defer j.Close()

	for i := int64(1); i <= 5; i++ {
		j.Record("label", "create", i, "")
	}
	got, err := j.Recent(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].EntityID)
}

func TestJournalReopensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path, nil)
	require.NoError(t, err)
	j.Record("group", "create", 1, "core")
	require.NoError(t, j.Close())

	j2, err := OpenJournal(path, nil)
	require.NoError(t, err)
	defer j2.Close()
	got, err := j2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNilJournalIsNoOp(t *testing.T) {
	var j *Journal
	j.Record("asset", "create", 1, "")
	got, err := j.Recent(10)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, j.Close())
}
