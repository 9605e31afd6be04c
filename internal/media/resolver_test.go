package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAudioFormat_PicksHighestBitrate(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 18, MimeType: "video/mp4", AudioChannels: 2, Width: 640, Height: 360, Bitrate: 500000},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, Bitrate: 130000},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, AverageBitrate: 160000},
		{ItagNo: 137, MimeType: "video/mp4", Width: 1920, Height: 1080, Bitrate: 4000000},
	}

	f, err := SelectAudioFormat(formats)
	require.NoError(t, err)
	assert.Equal(t, 251, f.ItagNo)
}

func TestSelectAudioFormat_None(t *testing.T) {
	formats := youtube.FormatList{
		{ItagNo: 18, MimeType: "video/mp4", AudioChannels: 2, Width: 640, Height: 360},
	}
	_, err := SelectAudioFormat(formats)
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, "m4a", ExtensionFor(`audio/mp4; codecs="mp4a.40.2"`))
	assert.Equal(t, "webm", ExtensionFor(`audio/webm; codecs="opus"`))
	assert.Equal(t, "mp3", ExtensionFor("audio/mpeg"))
	assert.Equal(t, "mp3", ExtensionFor("application/octet-stream"))
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", WatchURL("abc"))
}

func TestWriteFile_Atomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.m4a")
	n, err := writeFile(context.Background(), path, strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
	assert.NoFileExists(t, path+".part")
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) { return 0, errors.New("stream reset") }

func TestWriteFile_CleansUpOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.m4a")
	_, err := writeFile(context.Background(), path, failingReader{})
	require.Error(t, err)
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+".part")
}

func TestCopyWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var sb strings.Builder
	_, err := copyWithContext(ctx, &sb, strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeTranscoder struct {
	err     error
	partial bool
}

func (f fakeTranscoder) ToMP3(inputPath, outputPath string) error {
	if f.partial {
		if err := os.WriteFile(outputPath, []byte("half"), 0o644); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("mp3-bytes"), 0o644)
}

func fetchedFile(t *testing.T, name string) Fetched {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("raw"), 0o644))
	return Fetched{Path: path, Format: strings.TrimPrefix(filepath.Ext(name), "."), DurationSec: 30, Bytes: 3}
}

func TestTranscode_ReplacesRawFile(t *testing.T) {
	in := fetchedFile(t, "a.m4a")
	r := &YouTubeResolver{transcoder: fakeTranscoder{}}

	out := r.transcode(in)
	require.NoError(t, out.Warning)
	assert.Equal(t, "mp3", out.Format)
	assert.Equal(t, strings.TrimSuffix(in.Path, ".m4a")+".mp3", out.Path)
	assert.Equal(t, int64(9), out.Bytes)
	assert.FileExists(t, out.Path)
	assert.NoFileExists(t, in.Path)
}

func TestTranscode_FailureKeepsRawFile(t *testing.T) {
	in := fetchedFile(t, "a.webm")
	r := &YouTubeResolver{transcoder: fakeTranscoder{err: errors.New("ffmpeg exited 1"), partial: true}}

	out := r.transcode(in)
	require.Error(t, out.Warning)
	assert.Contains(t, out.Warning.Error(), "ffmpeg exited 1")
	assert.Equal(t, in.Path, out.Path)
	assert.Equal(t, "webm", out.Format)
	assert.Equal(t, int64(3), out.Bytes)
	assert.FileExists(t, in.Path)
	assert.NoFileExists(t, strings.TrimSuffix(in.Path, ".webm")+".mp3")
}
