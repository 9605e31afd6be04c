package models

const DumpVersion = 1

// Dump is the backup envelope of the whole catalog.
type Dump struct {
	Version   int        `json:"version"`
	Videos    []Video    `json:"videos"`
	Snapshots []Snapshot `json:"snapshots"`
	Downloads []Download `json:"downloads"`
}
