package trend

import "shortsd/internal/models"

const (
	// AccelerationWeight applies to the day-over-day change of speed.
	AccelerationWeight = 0.7
	// SpeedWeight applies to the view delta between the two latest snapshots.
	SpeedWeight = 0.3
)

// Score turns a video's snapshots, most recent first, into a trend score.
//
// With a single snapshot the total view count stands in for speed. With two
// or more, speed is the non-negative view delta between the latest two
// snapshots. Acceleration is not derived yet and always contributes zero.
func Score(snapshots []models.Snapshot) float64 {
	switch len(snapshots) {
	case 0:
		return 0
	case 1:
		return SpeedWeight * float64(snapshots[0].ViewCount)
	}

	speed := snapshots[0].ViewCount - snapshots[1].ViewCount
	if speed < 0 {
		speed = 0
	}
	acceleration := 0.0

	return AccelerationWeight*acceleration + SpeedWeight*float64(speed)
}
