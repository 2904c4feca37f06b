package plan

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jdalgard/pageplan/pkg/segment"
)

// entryWire is the serialized shape of an Entry: the intent variant is
// flattened into a kind discriminator plus exactly one populated branch.
type entryWire struct {
	Segment segment.Descriptor `json:"segment" bson:"segment"`
	Kind    string             `json:"kind" bson:"kind"`
	Place   *Place             `json:"place,omitempty" bson:"place,omitempty"`
	Defer   *Defer             `json:"defer,omitempty" bson:"defer,omitempty"`
}

func (e Entry) wire() (entryWire, error) {
	w := entryWire{Segment: e.Segment}
	switch intent := e.Intent.(type) {
	case Place:
		w.Kind = KindPlace
		w.Place = &intent
	case Defer:
		w.Kind = KindDefer
		w.Defer = &intent
	default:
		return entryWire{}, fmt.Errorf("entry %s: unknown intent %T", e.Segment.Key(), e.Intent)
	}
	return w, nil
}

func (e *Entry) fromWire(w entryWire) error {
	e.Segment = w.Segment
	switch w.Kind {
	case KindPlace:
		if w.Place == nil {
			return fmt.Errorf("entry %s: kind %q without place payload", w.Segment.Key(), w.Kind)
		}
		e.Intent = *w.Place
	case KindDefer:
		if w.Defer == nil {
			return fmt.Errorf("entry %s: kind %q without defer payload", w.Segment.Key(), w.Kind)
		}
		e.Intent = *w.Defer
	default:
		return fmt.Errorf("entry %s: unknown intent kind %q", w.Segment.Key(), w.Kind)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	w, err := e.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var w entryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return e.fromWire(w)
}

// MarshalBSON implements bson.Marshaler for Mongo archival.
func (e Entry) MarshalBSON() ([]byte, error) {
	w, err := e.wire()
	if err != nil {
		return nil, err
	}
	return bson.Marshal(w)
}

// UnmarshalBSON implements bson.Unmarshaler.
func (e *Entry) UnmarshalBSON(data []byte) error {
	var w entryWire
	if err := bson.Unmarshal(data, &w); err != nil {
		return err
	}
	return e.fromWire(w)
}
