package provider

import (
	"time"

	"shortsd/internal/models"

	"github.com/sosodev/duration"
	"github.com/spf13/cast"
)

// Item is a video resource as returned by videos.list.
type Item struct {
	ID             string         `json:"id"`
	Snippet        Snippet        `json:"snippet"`
	ContentDetails ContentDetails `json:"contentDetails"`
	Statistics     Statistics     `json:"statistics"`
}

type Snippet struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ChannelTitle string   `json:"channelTitle"`
	PublishedAt  string   `json:"publishedAt"`
	Tags         []string `json:"tags"`
}

type ContentDetails struct {
	Duration string `json:"duration"`
}

// Statistics counters arrive as decimal strings; missing counters are nil.
type Statistics struct {
	ViewCount    *string `json:"viewCount"`
	LikeCount    *string `json:"likeCount"`
	CommentCount *string `json:"commentCount"`
}

// Page is one page of the mostPopular chart.
type Page struct {
	Items      []Item
	NextCursor string
}

// DurationSeconds parses the ISO-8601 duration. Unparseable values yield 0.
func (it Item) DurationSeconds() int {
	if it.ContentDetails.Duration == "" {
		return 0
	}
	d, err := duration.Parse(it.ContentDetails.Duration)
	if err != nil {
		return 0
	}
	return int(d.ToTimeDuration() / time.Second)
}

// Normalize maps the item to a catalog video and today's snapshot.
func (it Item) Normalize(region string, shortsMaxSeconds int, now time.Time) (models.Video, models.Snapshot) {
	secs := it.DurationSeconds()
	video := models.Video{
		ID:           it.ID,
		Title:        it.Snippet.Title,
		Description:  it.Snippet.Description,
		Tags:         it.Snippet.Tags,
		ChannelTitle: it.Snippet.ChannelTitle,
		PublishedAt:  it.Snippet.PublishedAt,
		DurationSec:  secs,
		IsShort:      secs <= shortsMaxSeconds,
		Region:       region,
	}
	snap := models.Snapshot{
		VideoID:      it.ID,
		Date:         models.DateOf(now),
		ViewCount:    counter(it.Statistics.ViewCount),
		LikeCount:    optionalCounter(it.Statistics.LikeCount),
		CommentCount: optionalCounter(it.Statistics.CommentCount),
	}
	return video, snap
}

func counter(v *string) int64 {
	if v == nil {
		return 0
	}
	return cast.ToInt64(*v)
}

func optionalCounter(v *string) *int64 {
	if v == nil {
		return nil
	}
	n, err := cast.ToInt64E(*v)
	if err != nil {
		return nil
	}
	return &n
}
