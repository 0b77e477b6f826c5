package session

import (
	"context"
	"math"
	"sync"

	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/kv"
	"github.com/reel-player/reel/util"
	"github.com/samber/lo"
)

// Values are the player preferences applied to every loaded item.
type Values struct {
	Volume float64 `json:"volume" jsonschema:"minimum=0,maximum=1"`
	Muted  bool    `json:"muted"`
	Rate   float64 `json:"rate" jsonschema:"enum=0.5,enum=0.75,enum=1,enum=1.25,enum=1.5,enum=2"`
}

// Preferences holds volume, mute and playback rate, each persisted under its own key.
type Preferences struct {
	store kv.Store

	mu     sync.RWMutex
	values Values
}

// NewPreferences restores preferences from store, sanitizing out of range values.
func NewPreferences(ctx context.Context, store kv.Store) *Preferences {
	v := Values{
		Volume: kv.Load(ctx, store, constant.StorageVolume, constant.DefaultVolume),
		Muted:  kv.Load(ctx, store, constant.StorageMuted, false),
		Rate:   kv.Load(ctx, store, constant.StorageSpeed, constant.DefaultPlaybackSpeed),
	}

	v.Volume = clampVolume(v.Volume)
	if !lo.Contains(constant.PlaybackSpeeds, v.Rate) {
		v.Rate = constant.DefaultPlaybackSpeed
	}

	return &Preferences{store: store, values: v}
}

// clampVolume bounds v to [0, 1] on a 0.01 grid so repeated steps do not drift.
func clampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return constant.DefaultVolume
	}
	return math.Round(util.Clamp(v, 0, 1)*100) / 100
}

func (p *Preferences) Values() Values {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values
}

// SetVolume stores a clamped volume. Reaching zero mutes, leaving zero unmutes.
func (p *Preferences) SetVolume(v float64) Values {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values.Volume = clampVolume(v)
	p.values.Muted = p.values.Volume == 0

	kv.SaveQuietly(context.Background(), p.store, constant.StorageVolume, p.values.Volume)
	kv.SaveQuietly(context.Background(), p.store, constant.StorageMuted, p.values.Muted)
	return p.values
}

func (p *Preferences) SetMuted(muted bool) Values {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values.Muted = muted
	kv.SaveQuietly(context.Background(), p.store, constant.StorageMuted, muted)
	return p.values
}

// SetRate stores rate if it is one of the supported playback speeds.
func (p *Preferences) SetRate(rate float64) (Values, bool) {
	if !lo.Contains(constant.PlaybackSpeeds, rate) {
		return p.Values(), false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.values.Rate = rate
	kv.SaveQuietly(context.Background(), p.store, constant.StorageSpeed, rate)
	return p.values, true
}

// NextRate returns the speed following the current one, wrapping to the slowest.
func (p *Preferences) NextRate() float64 {
	current := p.Values().Rate
	_, i, ok := lo.FindIndexOf(constant.PlaybackSpeeds, func(s float64) bool { return s == current })
	if !ok {
		return constant.DefaultPlaybackSpeed
	}
	return constant.PlaybackSpeeds[(i+1)%len(constant.PlaybackSpeeds)]
}
