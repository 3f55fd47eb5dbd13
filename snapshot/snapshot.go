// Package snapshot serializes world state using the registry's stable
// component type names, so persisted data never embeds compiler type
// strings. It is the engine-level codec the save layer builds on, not the
// game's save format.
package snapshot

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/saltline/keel/ecs"
)

// Codec encodes and decodes worlds. Component types without a registered
// name are skipped on encode with a warning; unknown names are skipped on
// decode the same way. Entity identities are reassigned on decode, so
// snapshots must not embed raw Entity values inside component data.
type Codec struct {
	log *zap.Logger
}

// NewCodec creates a codec. A nil logger disables logging.
func NewCodec(log *zap.Logger) *Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{log: log}
}

type componentDoc struct {
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

type entityDoc struct {
	Components []componentDoc `yaml:"components"`
}

type worldDoc struct {
	Entities []entityDoc `yaml:"entities"`
}

// Encode serializes every live entity and its named components. Components
// are written sorted by type name so output is stable for a given world
// state.
func (c *Codec) Encode(w *ecs.World) ([]byte, error) {
	r := w.Registry()
	var doc worldDoc

	for _, e := range r.Alive() {
		var ed entityDoc
		for _, t := range r.Composition(e) {
			name := r.NameOf(t)
			if name == "" {
				c.log.Warn("component type has no registered name, skipping",
					zap.Stringer("entity", e),
					zap.String("type", t.String()))
				continue
			}
			value := r.ComponentValue(e, t)
			var node yaml.Node
			if err := node.Encode(value); err != nil {
				return nil, fmt.Errorf("encode %s: %w", name, err)
			}
			ed.Components = append(ed.Components, componentDoc{Type: name, Value: node})
		}
		sort.Slice(ed.Components, func(i, j int) bool {
			return ed.Components[i].Type < ed.Components[j].Type
		})
		doc.Entities = append(doc.Entities, ed)
	}

	return yaml.Marshal(&doc)
}

// Decode loads a snapshot into w, creating a fresh entity per document
// entry. Call World.Clear first to replace the current scene.
func (c *Codec) Decode(w *ecs.World, data []byte) error {
	var doc worldDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	r := w.Registry()
	for _, ed := range doc.Entities {
		e := r.CreateEntity()
		for _, cd := range ed.Components {
			ptr := r.NewValueByName(cd.Type)
			if ptr == nil {
				c.log.Warn("unknown component name, skipping",
					zap.String("name", cd.Type))
				continue
			}
			if err := cd.Value.Decode(ptr); err != nil {
				return fmt.Errorf("decode %s: %w", cd.Type, err)
			}
			r.AddByName(e, cd.Type, ptr)
		}
	}
	return nil
}
