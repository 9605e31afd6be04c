package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestItem_DurationSeconds(t *testing.T) {
	cases := map[string]int{
		"PT45S":    45,
		"PT1M":     60,
		"PT1M1S":   61,
		"PT1H2M3S": 3723,
		"":         0,
		"garbage":  0,
	}
	for in, want := range cases {
		it := Item{ContentDetails: ContentDetails{Duration: in}}
		assert.Equal(t, want, it.DurationSeconds(), in)
	}
}

func TestItem_Normalize(t *testing.T) {
	now := time.Date(2025, 3, 4, 23, 30, 0, 0, time.FixedZone("X", -5*3600))
	it := Item{
		ID: "abc",
		Snippet: Snippet{
			Title:        "Drill beat",
			Description:  "desc",
			ChannelTitle: "chan",
			PublishedAt:  "2025-03-01T00:00:00Z",
			Tags:         []string{"rap"},
		},
		ContentDetails: ContentDetails{Duration: "PT59S"},
		Statistics:     Statistics{ViewCount: strp("1500"), LikeCount: strp("20")},
	}

	video, snap := it.Normalize("US", 60, now)
	assert.Equal(t, "abc", video.ID)
	assert.Equal(t, 59, video.DurationSec)
	assert.True(t, video.IsShort)
	assert.Equal(t, "US", video.Region)
	assert.Equal(t, []string{"rap"}, video.Tags)

	assert.Equal(t, "2025-03-05", snap.Date)
	assert.Equal(t, int64(1500), snap.ViewCount)
	require.NotNil(t, snap.LikeCount)
	assert.Equal(t, int64(20), *snap.LikeCount)
	assert.Nil(t, snap.CommentCount)
}

func TestItem_NormalizeLongAndUnparseable(t *testing.T) {
	long := Item{ID: "l", ContentDetails: ContentDetails{Duration: "PT2M"}}
	video, snap := long.Normalize("US", 60, time.Now())
	assert.False(t, video.IsShort)
	assert.Equal(t, int64(0), snap.ViewCount)

	broken := Item{ID: "b", ContentDetails: ContentDetails{Duration: "P?"}}
	video, _ = broken.Normalize("US", 60, time.Now())
	assert.Equal(t, 0, video.DurationSec)
	assert.True(t, video.IsShort)
}
