package constant

// VideoExtensions lists the file extensions classified as playable video.
var VideoExtensions = []string{"mkv", "avi", "mp4", "webm", "mov", "flv", "wmv", "m4v"}

// SubtitleExtension is the only caption format the subtitle engine reads.
const SubtitleExtension = "srt"

// PlaybackSpeeds enumerates the selectable playback rates in cycling order.
var PlaybackSpeeds = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// Player defaults.
const (
	DefaultVolume        = 1.0
	DefaultPlaybackSpeed = 1.0
	VolumeStep           = 0.1
)

// CompletionThreshold is the fraction of the duration at which an item counts as watched.
const CompletionThreshold = 0.95

// LoopEpsilon is the minimum length in seconds of an active A/B segment.
const LoopEpsilon = 0.05

// MPV is the default player binary.
const MPV = "mpv"
