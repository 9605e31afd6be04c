package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shortsd/internal/models"
	"shortsd/internal/structures"

	"github.com/kkdai/youtube/v2"
)

var ErrNoAudio = errors.New("no audio-only format available")

const watchURL = "https://www.youtube.com/watch?v="

// Fetched describes an audio file written to disk.
type Fetched struct {
	Path        string
	Format      string
	DurationSec int
	Bytes       int64
	// Warning is a non-fatal problem met after the audio was stored.
	Warning error
}

// Resolver finds and fetches the audio rendition of a video.
type Resolver interface {
	ResolveAudio(ctx context.Context, videoID string) (models.AudioStream, error)
	DownloadAudio(ctx context.Context, videoID, dir string) (Fetched, error)
}

// YouTubeResolver resolves audio streams with the kkdai/youtube client and
// optionally transcodes downloads to mp3.
type YouTubeResolver struct {
	client     *youtube.Client
	transcoder Transcoder
}

func NewYouTubeResolver(conf *structures.Config, transcoder Transcoder) *YouTubeResolver {
	timeout := conf.Provider.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	r := &YouTubeResolver{
		client: &youtube.Client{HTTPClient: &http.Client{Timeout: 5 * timeout}},
	}
	if conf.Media.Transcode {
		r.transcoder = transcoder
	}
	return r
}

// WatchURL is the public page of a video.
func WatchURL(videoID string) string {
	return watchURL + videoID
}

func (r *YouTubeResolver) ResolveAudio(ctx context.Context, videoID string) (models.AudioStream, error) {
	video, err := r.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return models.AudioStream{}, fmt.Errorf("fetching video %s: %w", videoID, err)
	}
	format, err := SelectAudioFormat(video.Formats)
	if err != nil {
		return models.AudioStream{}, fmt.Errorf("video %s: %w", videoID, err)
	}
	streamURL, err := r.client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return models.AudioStream{}, fmt.Errorf("resolving stream of %s: %w", videoID, err)
	}
	return models.AudioStream{
		VideoID:  videoID,
		URL:      streamURL,
		Format:   ExtensionFor(format.MimeType),
		MimeType: format.MimeType,
		Bitrate:  bitrateOf(format),
	}, nil
}

// DownloadAudio writes the best audio stream of videoID into dir. With a
// transcoder configured the file is converted to mp3 and the original is
// removed, unless the conversion fails.
func (r *YouTubeResolver) DownloadAudio(ctx context.Context, videoID, dir string) (Fetched, error) {
	video, err := r.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return Fetched{}, fmt.Errorf("fetching video %s: %w", videoID, err)
	}
	format, err := SelectAudioFormat(video.Formats)
	if err != nil {
		return Fetched{}, fmt.Errorf("video %s: %w", videoID, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Fetched{}, fmt.Errorf("creating media directory: %w", err)
	}

	ext := ExtensionFor(format.MimeType)
	path := filepath.Join(dir, videoID+"."+ext)

	stream, _, err := r.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return Fetched{}, fmt.Errorf("starting stream of %s: %w", videoID, err)
	}
	defer stream.Close()

	written, err := writeFile(ctx, path, stream)
	if err != nil {
		return Fetched{}, err
	}

	out := Fetched{
		Path:        path,
		Format:      ext,
		DurationSec: int(video.Duration / time.Second),
		Bytes:       written,
	}

	if r.transcoder == nil || ext == "mp3" {
		return out, nil
	}
	return r.transcode(out), nil
}

// transcode converts a fetched file to mp3. When ffmpeg fails the raw file is
// kept as the result and the failure is carried in Warning.
func (r *YouTubeResolver) transcode(out Fetched) Fetched {
	mp3Path := strings.TrimSuffix(out.Path, filepath.Ext(out.Path)) + ".mp3"
	if err := r.transcoder.ToMP3(out.Path, mp3Path); err != nil {
		if rerr := os.Remove(mp3Path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = errors.Join(err, rerr)
		}
		out.Warning = fmt.Errorf("transcoding %s: %w", out.Path, err)
		return out
	}
	if err := os.Remove(out.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		out.Warning = fmt.Errorf("removing %s after transcoding: %w", out.Path, err)
	}
	out.Path = mp3Path
	out.Format = "mp3"
	if info, err := os.Stat(mp3Path); err == nil {
		out.Bytes = info.Size()
	}
	return out
}

// SelectAudioFormat picks the audio-only format with the highest bitrate.
func SelectAudioFormat(formats youtube.FormatList) (*youtube.Format, error) {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 || f.Width != 0 || f.Height != 0 {
			continue
		}
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || bitrateOf(f) > bitrateOf(best) {
			best = f
		}
	}
	if best == nil {
		return nil, ErrNoAudio
	}
	return best, nil
}

// ExtensionFor maps an audio mime type to a file extension.
func ExtensionFor(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	switch base {
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "m4a"
	case "audio/webm":
		return "webm"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/ogg":
		return "ogg"
	}
	return "mp3"
}

func bitrateOf(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

func writeFile(ctx context.Context, path string, src io.Reader) (int64, error) {
	tmp := path + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", tmp, err)
	}

	written, err := copyWithContext(ctx, file, src)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return written, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return written, fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return written, nil
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			total += int64(w)
			if werr != nil {
				return total, werr
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
