// Package netcodec is the wire format for entity records exchanged with
// networking collaborators.
package netcodec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"ebiten-rally/ecs"
)

// Version is written ahead of every batch so peers can reject foreign payloads
const Version uint8 = 1

// ErrVersion is returned when a payload was written by an incompatible codec
var ErrVersion = errors.New("unsupported record version")

type batch struct {
	Version uint8        `msgpack:"v"`
	Records []ecs.Record `msgpack:"r"`
}

// Encode packs a single record
func Encode(r ecs.Record) ([]byte, error) {
	return EncodeBatch([]ecs.Record{r})
}

// EncodeBatch packs records for one snapshot
func EncodeBatch(records []ecs.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(batch{Version: Version, Records: records}); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode unpacks a payload holding exactly one record
func Decode(data []byte) (ecs.Record, error) {
	records, err := DecodeBatch(data)
	if err != nil {
		return ecs.Record{}, err
	}
	if len(records) != 1 {
		return ecs.Record{}, fmt.Errorf("decode record: expected 1 record, got %d", len(records))
	}
	return records[0], nil
}

// DecodeBatch unpacks a snapshot
func DecodeBatch(data []byte) ([]ecs.Record, error) {
	var b batch
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	// Numbers in custom data come back as int64, uint64 or float64
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if b.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, b.Version)
	}
	return b.Records, nil
}

// Snapshot serializes every object in the scene
func Snapshot(scene *ecs.Scene) ([]byte, error) {
	objects := scene.Objects()
	records := make([]ecs.Record, 0, len(objects))
	for _, obj := range objects {
		records = append(records, obj.Serialize())
	}
	return EncodeBatch(records)
}

// Apply decodes a snapshot and applies each record to the matching object.
// Records for unknown objects are skipped and counted.
func Apply(scene *ecs.Scene, data []byte) (applied, skipped int, err error) {
	records, err := DecodeBatch(data)
	if err != nil {
		return 0, 0, err
	}
	for _, r := range records {
		obj := scene.Get(r.ID)
		if obj == nil {
			skipped++
			continue
		}
		if err := obj.Deserialize(r); err != nil {
			return applied, skipped, err
		}
		applied++
	}
	return applied, skipped, nil
}
