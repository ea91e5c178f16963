package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, fields map[string]any) Item {
	return NewItem(id, fields)
}

func TestCart_AddDistinctIDs(t *testing.T) {
	var c Cart
	for i := 0; i < 5; i++ {
		c = c.Add(item(fmt.Sprintf("p%d", i), nil))
	}
	require.Equal(t, 5, c.Len())
	for i, l := range c.Lines {
		assert.Equal(t, fmt.Sprintf("p%d", i), l.ID)
		assert.Equal(t, 1, l.Quantity)
	}
}

func TestCart_AddSameIDKeepsFirstFields(t *testing.T) {
	c := Cart{}.
		Add(item("p1", map[string]any{"name": "first", "price": 10})).
		Add(item("p1", map[string]any{"name": "second"}))

	require.Equal(t, 1, c.Len())
	l := c.Lines[0]
	assert.Equal(t, 2, l.Quantity)
	assert.Equal(t, "first", l.Fields["name"])
	assert.Equal(t, 10, l.Fields["price"])
}

func TestCart_DecreaseNeverBelowOne(t *testing.T) {
	c := Cart{}.Add(item("p1", nil)).Decrease("p1")
	l, ok := c.Find("p1")
	require.True(t, ok)
	assert.Equal(t, 1, l.Quantity)

	c = c.Increase("p1").Increase("p1").Decrease("p1")
	l, _ = c.Find("p1")
	assert.Equal(t, 2, l.Quantity)
}

func TestCart_QuantitySaturatesAtMaxInt(t *testing.T) {
	c := NewCart([]Line{{ID: "p1", Quantity: math.MaxInt}, {ID: "p2", Quantity: 3}})

	assert.True(t, c.Equal(c.Increase("p1")))
	assert.True(t, c.Equal(c.Add(item("p1", nil))))

	l, _ := c.Increase("p1").Find("p1")
	assert.Equal(t, math.MaxInt, l.Quantity)
	require.NoError(t, l.Validate())
	assert.Equal(t, math.MaxInt, c.Count())

	l, _ = c.Decrease("p1").Find("p1")
	assert.Equal(t, math.MaxInt-1, l.Quantity)
}

func TestCart_AbsentIDsAreNoops(t *testing.T) {
	c := Cart{}.Add(item("p1", nil))
	assert.True(t, c.Equal(c.Increase("nope")))
	assert.True(t, c.Equal(c.Decrease("nope")))
	assert.True(t, c.Equal(c.Remove("nope")))
}

func TestCart_RemoveIdempotent(t *testing.T) {
	c := Cart{}.Add(item("p1", nil)).Add(item("p2", nil))
	once := c.Remove("p1")
	twice := once.Remove("p1")
	assert.True(t, once.Equal(twice))
	_, ok := twice.Find("p1")
	assert.False(t, ok)
	assert.Equal(t, 1, twice.Len())
}

func TestCart_TransitionsDoNotAliasPreviousState(t *testing.T) {
	c := Cart{}.Add(item("p1", nil)).Add(item("p2", nil))
	_ = c.Increase("p1")
	_ = c.Remove("p1")
	_ = c.Add(item("p2", nil))

	assert.Equal(t, "p1", c.Lines[0].ID)
	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, 1, c.Lines[1].Quantity)
}

func TestCart_Scenario(t *testing.T) {
	c := Cart{}.Add(item("p1", map[string]any{"price": 10}))
	assert.JSONEq(t, `[{"id":"p1","price":10,"quantity":1}]`, mustSnapshot(t, c))

	c = c.Add(item("p1", nil))
	assert.JSONEq(t, `[{"id":"p1","price":10,"quantity":2}]`, mustSnapshot(t, c))

	c = c.Decrease("p1")
	assert.Equal(t, 1, c.Lines[0].Quantity)
	c = c.Decrease("p1")
	assert.Equal(t, 1, c.Lines[0].Quantity)

	c = c.Remove("p1")
	assert.Equal(t, `[]`, mustSnapshot(t, c))
}

func TestCart_CountAndSubtotal(t *testing.T) {
	c := Cart{}.
		Add(item("a", map[string]any{"price": json.Number("19.99")})).
		Add(item("b", map[string]any{"price": "5"})).
		Add(item("c", map[string]any{"name": "no price"})).
		Increase("a")

	assert.Equal(t, 4, c.Count())
	assert.True(t, decimal.RequireFromString("44.98").Equal(c.Subtotal()), c.Subtotal().String())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	c := Cart{}.
		Add(item("p2", map[string]any{"name": "Mug", "price": 8.5})).
		Add(item("p1", map[string]any{"tags": []any{"a", "b"}})).
		Increase("p2")

	lines, err := DecodeSnapshot(mustSnapshot(t, c))
	require.NoError(t, err)
	restored := NewCart(lines)
	assert.True(t, c.Equal(restored))
	assert.Equal(t, "Mug", restored.Lines[0].Fields["name"])
}

func TestDecodeSnapshot_NumericID(t *testing.T) {
	lines, err := DecodeSnapshot(`[{"id":7,"quantity":3,"price":1.5}]`)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "7", lines[0].ID)
	assert.Equal(t, 3, lines[0].Quantity)

	raw, err := EncodeSnapshot(lines)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"7","quantity":3,"price":1.5}]`, raw)
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	tests := []string{
		`not json`,
		`{"id":"p1"}`,
		`[{"quantity":1}]`,
		`[{"id":"","quantity":1}]`,
		`[{"id":"p1","quantity":0}]`,
		`[{"id":"p1","quantity":"2"}]`,
		`[{"id":"p1","quantity":1.5}]`,
		`[{"id":true,"quantity":1}]`,
		`[{"id":"p1","quantity":1},{"id":"p1","quantity":2}]`,
		`[null]`,
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := DecodeSnapshot(raw)
			assert.Error(t, err)
		})
	}
}

func TestItem_UnmarshalIgnoresQuantity(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"id":12,"name":"Lamp","quantity":9}`), &it))
	assert.Equal(t, "12", it.ID)
	assert.Equal(t, map[string]any{"name": "Lamp"}, it.Fields)

	assert.Error(t, json.Unmarshal([]byte(`{"name":"Lamp"}`), &it))
}

func mustSnapshot(t *testing.T, c Cart) string {
	t.Helper()
	raw, err := EncodeSnapshot(c.Lines)
	require.NoError(t, err)
	return raw
}
