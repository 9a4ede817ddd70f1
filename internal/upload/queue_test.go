package upload

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/testutil"
	"github.com/learnable-ai/companion/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	os.Exit(m.Run())
}

func incoming(name, body string) Incoming {
	return Incoming{Name: name, Size: int64(len(body)), Reader: strings.NewReader(body)}
}

func TestQueue_AddAppends(t *testing.T) {
	store := testutil.NewMockStorage()
	q := NewQueue(store, nil)

	first, rej, err := q.Add(incoming("lecture.mp3", "aaa"))
	require.NoError(t, err)
	require.Nil(t, rej)
	second, _, err := q.Add(incoming("other.mp3", "bbbb"))
	require.NoError(t, err)

	list := q.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, models.FileStatusPending, list[0].Status)
	assert.Equal(t, models.CategoryAudio, list[0].Category)
	assert.Equal(t, "audio/mpeg", list[0].MimeType)
	assert.Equal(t, int64(4), list[1].Size)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestQueue_InvalidFilesAreSkipped(t *testing.T) {
	store := testutil.NewMockStorage()
	q := NewQueue(store, nil)

	big := Incoming{Name: "movie.mp4", Size: 60 * 1024 * 1024, Reader: strings.NewReader("")}
	added, rejected, err := q.AddMany([]Incoming{
		incoming("notes.txt", "hello"),
		big,
		incoming("slides.pdf", "%PDF-"),
	})
	require.NoError(t, err)

	require.Len(t, added, 1)
	assert.Equal(t, "slides.pdf", added[0].Name)
	require.Len(t, rejected, 2)
	assert.Contains(t, rejected[0].Reason, "unsupported file type")
	assert.Contains(t, rejected[1].Reason, "50 MB")
	assert.Equal(t, 1, store.BlobCount())
}

func TestQueue_StorageFailure(t *testing.T) {
	store := testutil.NewMockStorage()
	store.SaveErr = errors.New("disk full")
	q := NewQueue(store, nil)

	_, _, err := q.Add(incoming("notes.pdf", "x"))
	assert.Error(t, err)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_RemoveAndClear(t *testing.T) {
	store := testutil.NewMockStorage()
	q := NewQueue(store, nil)

	a, _, _ := q.Add(incoming("a.pdf", "a"))
	b, _, _ := q.Add(incoming("b.wav", "b"))
	_, _, _ = q.Add(incoming("c.mov", "c"))

	require.NoError(t, q.Remove(a.ID))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, store.BlobCount())
	_, ok := q.Get(a.ID)
	assert.False(t, ok)
	_, ok = q.Get(b.ID)
	assert.True(t, ok)

	assert.ErrorIs(t, q.Remove("missing"), errs.ErrFileNotFound)

	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, store.BlobCount())
}

func TestQueue_FirstOfEachCategory(t *testing.T) {
	q := NewQueue(testutil.NewMockStorage(), nil)

	a1, _, _ := q.Add(incoming("first.mp3", "1"))
	_, _, _ = q.Add(incoming("second.wav", "2"))
	v1, _, _ := q.Add(incoming("clip.mp4", "3"))
	d1, _, _ := q.Add(incoming("paper.pdf", "4"))
	_, _, _ = q.Add(incoming("paper2.docx", "5"))

	picked := q.FirstOfEachCategory()
	require.Len(t, picked, 3)
	assert.Equal(t, a1.ID, picked[models.CategoryAudio].ID)
	assert.Equal(t, v1.ID, picked[models.CategoryVideo].ID)
	assert.Equal(t, d1.ID, picked[models.CategoryDocument].ID)
}

func TestQueue_SetStatusAndObservers(t *testing.T) {
	q := NewQueue(testutil.NewMockStorage(), validate.New(0))

	var snapshots [][]models.UploadedFile
	q.OnChange(func(files []models.UploadedFile) {
		snapshots = append(snapshots, files)
	})

	f, _, _ := q.Add(incoming("a.flac", "abc"))
	q.SetStatus(f.ID, models.FileStatusUploading, 140, "")
	q.SetStatus(f.ID, models.FileStatusError, 50, "boom")
	q.SetStatus("unknown", models.FileStatusSuccess, 100, "")

	require.Len(t, snapshots, 3)
	assert.Equal(t, 100, snapshots[1][0].Progress)
	assert.Equal(t, models.FileStatusError, snapshots[2][0].Status)
	assert.Equal(t, "boom", snapshots[2][0].Error)

	rc, err := q.Open(f.ID)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "abc", string(data))
}
