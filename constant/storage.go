package constant

// Storage keys of the persisted engine state. Each key holds one JSON document.
const (
	StoragePlaylist     = "playlist"
	StorageCurrentIndex = "currentIndex"
	StorageIsLooping    = "isLooping"
	StorageIsShuffling  = "isShuffling"
	StorageVolume       = "player_volume"
	StorageMuted        = "player_muted"
	StorageSpeed        = "player_speed"
	StorageWatchHistory = "watch_history"
)

// StorageKeys lists every key the engine writes, in a stable order.
var StorageKeys = []string{
	StoragePlaylist,
	StorageCurrentIndex,
	StorageIsLooping,
	StorageIsShuffling,
	StorageVolume,
	StorageMuted,
	StorageSpeed,
	StorageWatchHistory,
}
