package ecs

import (
	"errors"
	"fmt"

	"ebiten-rally/geom"
)

// ErrRecordMismatch is returned when a record is applied to the wrong entity
var ErrRecordMismatch = errors.New("record does not belong to this entity")

// ActiveFlags captures which parts of an object are switched on
type ActiveFlags struct {
	Enabled bool `json:"enabled" msgpack:"enabled"`
	// Components maps component type names to their active flag
	Components map[string]bool `json:"components,omitempty" msgpack:"components,omitempty"`
}

// Record is the plain snapshot of an entity handed to persistence and networking
type Record struct {
	ID         EntityID       `json:"id" msgpack:"id"`
	Name       string         `json:"name" msgpack:"name"`
	Transform  geom.Transform `json:"transform" msgpack:"transform"`
	Active     ActiveFlags    `json:"active" msgpack:"active"`
	CustomData map[string]any `json:"customData,omitempty" msgpack:"customData,omitempty"`
}

// Serialize snapshots the entity
func (e *Entity) Serialize() Record {
	r := Record{
		ID:        e.id,
		Name:      e.name,
		Transform: e.transform,
		Active: ActiveFlags{
			Enabled:    e.object == nil || e.object.enabled,
			Components: make(map[string]bool, len(e.order)),
		},
	}
	for _, entry := range e.order {
		r.Active.Components[ComponentName(entry.id)] = entry.active
	}
	if len(e.CustomData) > 0 {
		r.CustomData = make(map[string]any, len(e.CustomData))
		for k, v := range e.CustomData {
			r.CustomData[k] = v
		}
	}
	return r
}

// Deserialize applies a record produced for this entity. A bound body is
// teleported so physics agrees with the new transform.
func (e *Entity) Deserialize(r Record) error {
	if r.ID != e.id {
		return fmt.Errorf("apply record %d to entity %d: %w", r.ID, e.id, ErrRecordMismatch)
	}
	if r.Name != "" {
		e.name = r.Name
	}
	t := r.Transform
	if t.Rotation.Len() == 0 {
		t.Rotation = e.transform.Rotation
	}
	e.Teleport(t)
	for _, entry := range e.order {
		if active, ok := r.Active.Components[ComponentName(entry.id)]; ok {
			entry.active = active
		}
	}
	for k, v := range r.CustomData {
		e.CustomData[k] = v
	}
	if e.object != nil {
		e.object.SetEnabled(r.Active.Enabled)
	}
	return nil
}
