package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSetGetDeletePreservesOrder(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Set("b", 20) // overwrite, must not move position

	assert.Equal(t, 3, m.Len())
	var keys []string
	m.Range(func(k string, v int) { keys = append(keys, k) })
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	v, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, 20, v)

	m.Delete("b")
	assert.Equal(t, 2, m.Len())
	_, ok = m.Get("b")
	assert.False(t, ok)

	keys = nil
	m.Range(func(k string, v int) { keys = append(keys, k) })
	assert.Equal(t, []string{"a", "c"}, keys)
}

func TestMapMarshalUnmarshalWireProtocol(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("x", 1)
	m.Set("y", 2)

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "M", wire["__t"])

	var roundTripped Map[string, int]
	require.NoError(t, json.Unmarshal(raw, &roundTripped))
	assert.Equal(t, 2, roundTripped.Len())
	v, ok := roundTripped.Get("x")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = roundTripped.Get("y")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSetAddHasRemovePreservesOrder(t *testing.T) {
	s := NewSet[string]()
	s.Add("a")
	s.Add("b")
	s.Add("a") // duplicate, no-op

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))
	assert.Equal(t, []string{"a", "b"}, s.Items())

	s.Remove("a")
	assert.False(t, s.Has("a"))
	assert.Equal(t, []string{"b"}, s.Items())

	s.Remove("nonexistent") // idempotent
}

func TestSetMarshalUnmarshalWireProtocol(t *testing.T) {
	s := NewSet[int]()
	s.Add(3)
	s.Add(1)
	s.Add(2)

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "S", wire["__t"])

	var roundTripped Set[int]
	require.NoError(t, json.Unmarshal(raw, &roundTripped))
	assert.Equal(t, []int{3, 1, 2}, roundTripped.Items(), "insertion order survives the round trip")
}

func TestEmptySetMarshalsToEmptyArrayNotNull(t *testing.T) {
	s := NewSet[int]()
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var wire struct {
		D []int `json:"d"`
	}
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.NotNil(t, wire.D)
	assert.Empty(t, wire.D)
}

type stripSample struct {
	Name    string `json:"name"`
	Omitted string `json:"omitted,omitempty"`
	Hidden  string `json:"-"`
	private string
	OnTick  func() `json:"on_tick"`
}

func TestEncodeStripsFuncFieldsAndHonorsJSONTags(t *testing.T) {
	v := stripSample{Name: "alice", OnTick: func() {}}
	raw, err := Encode(v)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "alice", decoded["name"])
	_, hasOmitted := decoded["omitted"]
	assert.False(t, hasOmitted, "empty omitempty field must be dropped")
	_, hasHidden := decoded["Hidden"]
	assert.False(t, hasHidden, "json:\"-\" field must be dropped")
	_, hasPrivate := decoded["private"]
	assert.False(t, hasPrivate, "unexported field must be dropped")
	onTick, hasOnTick := decoded["on_tick"]
	assert.False(t, hasOnTick, "func field must be dropped, key and all")
	assert.Nil(t, onTick)
}

func TestEncodeLeavesMapAndSetIntact(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("k", 1)

	raw, err := Encode(m)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "M", wire["__t"], "stripFuncs must not unwrap types with their own MarshalJSON")
}

func TestDecodeRoundTripsIntoConcreteType(t *testing.T) {
	raw, err := Encode(stripSample{Name: "bob"})
	require.NoError(t, err)

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, Decode(raw, &out))
	assert.Equal(t, "bob", out.Name)
}

func TestStripFuncsHandlesNilPointerAndNestedSlice(t *testing.T) {
	type inner struct {
		Val int `json:"val"`
	}
	type outer struct {
		Ptr   *inner  `json:"ptr"`
		Items []inner `json:"items"`
	}

	raw, err := Encode(outer{Ptr: nil, Items: []inner{{Val: 1}, {Val: 2}}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["ptr"])
	items, ok := decoded["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}
