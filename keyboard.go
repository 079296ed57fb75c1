package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"ebiten-rally/input"
)

// KeyboardPoller reads the ebiten keyboard through a binding table
type KeyboardPoller struct {
	bindings input.Bindings
	keys     map[string]ebiten.Key
}

// NewKeyboardPoller resolves binding key names to ebiten keys. Unknown names are
// logged and never pressed.
func NewKeyboardPoller(bindings input.Bindings, log zerolog.Logger) *KeyboardPoller {
	byName := make(map[string]ebiten.Key)
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		byName[k.String()] = k
	}

	keys := make(map[string]ebiten.Key)
	for _, name := range bindings.Keys() {
		k, ok := byName[name]
		if !ok {
			log.Warn().Str("key", name).Msg("Unknown key in bindings")
			continue
		}
		keys[name] = k
	}
	return &KeyboardPoller{bindings: bindings, keys: keys}
}

// Poll implements input.Poller
func (p *KeyboardPoller) Poll() input.State {
	return p.bindings.Resolve(
		func(name string) bool {
			k, ok := p.keys[name]
			return ok && ebiten.IsKeyPressed(k)
		},
		func(name string) bool {
			k, ok := p.keys[name]
			return ok && inpututil.IsKeyJustPressed(k)
		},
	)
}
