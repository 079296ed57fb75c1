// Package sound plays background music and collision sounds.
package sound

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/rs/zerolog"

	"ebiten-rally/ecs"
	"ebiten-rally/systems"
)

// AudioSystem handles all audio playback
type AudioSystem struct {
	audioContext *audio.Context
	bgmPlayer    *audio.Player
	bgmStream    io.ReadSeeker
	volume       float64
	sampleRate   int
	// impacts caches one rendered thud per damage bucket
	impacts map[int][]byte
	log     zerolog.Logger
}

// NewAudioSystem creates a new audio system. Only one may exist per process.
func NewAudioSystem(sampleRate int, log zerolog.Logger) *AudioSystem {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &AudioSystem{
		audioContext: audio.NewContext(sampleRate),
		volume:       1.0, // Default volume
		sampleRate:   sampleRate,
		impacts:      make(map[int][]byte),
		log:          log,
	}
}

// Listen plays an impact sound for every ImpactEvent in the scene
func (s *AudioSystem) Listen(scene *ecs.Scene) ecs.SubscriptionID {
	return scene.Events().Subscribe(systems.EventImpact, func(event ecs.Event) {
		s.PlayImpact(event.(systems.ImpactEvent).Damage)
	})
}

// PlayImpact plays a short thud; harder hits are louder and lower
func (s *AudioSystem) PlayImpact(damage int) {
	bucket := damage / 5
	if bucket > 8 {
		bucket = 8
	}
	pcm, ok := s.impacts[bucket]
	if !ok {
		pcm = Thud(s.sampleRate, 140-10*float64(bucket), 0.12, 0.3+0.08*float64(bucket))
		s.impacts[bucket] = pcm
	}
	player := s.audioContext.NewPlayerFromBytes(pcm)
	player.SetVolume(s.volume)
	player.Play()
}

// PlayBGM starts playing background music
func (s *AudioSystem) PlayBGM(path string) error {
	// Stop any currently playing BGM
	if s.bgmPlayer != nil {
		s.bgmPlayer.Close()
		s.bgmPlayer = nil
	}
	if s.bgmStream != nil {
		if closer, ok := s.bgmStream.(io.Closer); ok {
			closer.Close()
		}
		s.bgmStream = nil
	}

	// Open the audio file
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}

	var stream io.ReadSeeker

	// Determine file type and create appropriate stream
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(s.sampleRate, file)
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(s.sampleRate, file)
	default:
		file.Close()
		return fmt.Errorf("unsupported audio format: %s", path)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to decode audio file: %w", err)
	}

	s.bgmStream = stream
	player, err := s.audioContext.NewPlayer(stream)
	if err != nil {
		file.Close()
		if closer, ok := stream.(io.Closer); ok {
			closer.Close()
		}
		return fmt.Errorf("failed to create audio player: %w", err)
	}
	s.log.Info().Str("path", path).Msg("Background music started")

	s.bgmPlayer = player
	s.bgmPlayer.SetVolume(s.volume)
	s.bgmPlayer.Play()
	return nil
}

// StopBGM stops the background music
func (s *AudioSystem) StopBGM() {
	if s.bgmPlayer != nil {
		s.bgmPlayer.Close()
		s.bgmPlayer = nil
	}
	if s.bgmStream != nil {
		if closer, ok := s.bgmStream.(io.Closer); ok {
			closer.Close()
		}
		s.bgmStream = nil
	}
}

// ResumeBGM resumes the background music
func (s *AudioSystem) ResumeBGM() {
	if s.bgmPlayer != nil {
		s.bgmPlayer.Play()
	}
}

// IsBGMPlaying returns whether background music is currently playing
func (s *AudioSystem) IsBGMPlaying() bool {
	return s.bgmPlayer != nil && s.bgmPlayer.IsPlaying()
}

// SetVolume sets the volume for background music (0.0 to 1.0)
func (s *AudioSystem) SetVolume(volume float64) {
	s.volume = volume
	if s.bgmPlayer != nil {
		s.bgmPlayer.SetVolume(volume)
	}
}

// GetVolume returns the current volume setting
func (s *AudioSystem) GetVolume() float64 {
	return s.volume
}

// Close stops all playback
func (s *AudioSystem) Close() {
	s.StopBGM()
}
