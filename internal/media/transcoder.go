package media

import (
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Transcoder converts a downloaded audio file to mp3.
type Transcoder interface {
	ToMP3(inputPath, outputPath string) error
}

// FFmpegTranscoder shells out to ffmpeg through ffmpeg-go.
type FFmpegTranscoder struct{}

func NewFFmpegTranscoder() *FFmpegTranscoder {
	return &FFmpegTranscoder{}
}

func (FFmpegTranscoder) ToMP3(inputPath, outputPath string) error {
	return ffmpeg.Input(inputPath).
		Output(outputPath, ffmpeg.KwArgs{"vn": "", "acodec": "libmp3lame", "q:a": "2"}).
		OverWriteOutput().
		Silent(true).
		Run()
}
