package main

import (
	"fmt"
	"strings"

	"shortsd/internal/apiclient"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("62")
	colorMuted     = lipgloss.Color("241")
	colorHighlight = lipgloss.Color("212")
	colorSuccess   = lipgloss.Color("78")
	colorError     = lipgloss.Color("196")
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(10)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	genreStyle   = lipgloss.NewStyle().Foreground(colorHighlight)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	trackStyle   = lipgloss.NewStyle().PaddingLeft(4)
)

func renderHeader(query string, maxResults int, download bool) string {
	lines := []string{
		headerStyle.Render(fmt.Sprintf("Search: %q", query)),
		mutedStyle.Render(fmt.Sprintf("max results: %d  download: %t", maxResults, download)),
	}
	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	return labelStyle.Render(label) + value
}

func renderTrack(i int, t apiclient.Track) string {
	rows := []string{
		field("channel", t.ChannelTitle),
		field("duration", fmt.Sprintf("%ds", t.DurationSec)),
	}
	if t.PrimaryGenre != nil && *t.PrimaryGenre != "" {
		rows = append(rows, field("genre", genreStyle.Render(fmt.Sprintf("%s (%.2f)", *t.PrimaryGenre, t.GenreConfidence))))
	}
	if t.Stats != nil {
		rows = append(rows, field("views", fmt.Sprintf("%d  likes %d  comments %d", t.Stats.ViewCount, t.Stats.LikeCount, t.Stats.CommentCount)))
	}
	if t.IsDownloaded {
		rows = append(rows, field("status", successStyle.Render("downloaded")))
	}
	rows = append(rows, field("youtube", t.YoutubeURL))
	for _, link := range []struct{ label, url string }{
		{"download", t.DownloadURL},
		{"api", t.APIDownloadURL},
		{"direct", t.DirectDownloadURL},
		{"info", t.DownloadInfoURL},
	} {
		if link.url != "" {
			rows = append(rows, field(link.label, link.url))
		}
	}

	title := titleStyle.Render(fmt.Sprintf("%2d. %s", i, t.Title))
	return title + "\n" + trackStyle.Render(strings.Join(rows, "\n"))
}

func renderResult(res *apiclient.SearchResult) string {
	var b strings.Builder
	b.WriteString(successStyle.Render(res.Message))
	if res.Report != nil {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("downloaded %d, skipped %d, failed %d",
			len(res.Report.Downloaded), len(res.Report.Skipped), len(res.Report.Failed))))
	}

	tracks := res.Tracks()
	if len(tracks) == 0 {
		b.WriteString("\n" + mutedStyle.Render("no tracks found"))
		return b.String()
	}
	for i, t := range tracks {
		b.WriteString("\n\n" + renderTrack(i+1, t))
	}
	return b.String()
}

func renderTop(top []apiclient.RankedTrack) string {
	if len(top) == 0 {
		return mutedStyle.Render("ranking is empty")
	}
	lines := []string{headerStyle.Render("Trending shorts")}
	for i, t := range top {
		lines = append(lines, fmt.Sprintf("%2d. %s %s %s",
			i+1, titleStyle.Render(t.Title), mutedStyle.Render(t.ChannelTitle),
			genreStyle.Render(fmt.Sprintf("%.1f", t.TrendScore))))
	}
	return strings.Join(lines, "\n")
}
