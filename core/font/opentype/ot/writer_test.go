package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeBreadthFirst(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	c := NewNode("c").U16(0xcccc)
	a := NewNode("a").U16(0xaaaa).Link16(c)
	b := NewNode("b").U16(0xbbbb)
	root := NewNode("root").U16(1).Link16(a).Link16(b).Link16(b)
	assert.Equal(t, 8, root.Len())
	out, err := Serialize(root)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00, 0x01, 0x00, 0x08, 0x00, 0x0c, 0x00, 0x0c, // root
		0xaa, 0xaa, 0x00, 0x06, // a
		0xbb, 0xbb, // b, shared
		0xcc, 0xcc, // c
	}, out)
}

func TestSerializeNullAndWide(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	child := NewNode("child").Bytes([]byte{1, 2})
	root := NewNode("root").Link16(nil).Link32(child).I16(-1)
	out, err := Serialize(root)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 8, 0xff, 0xff, 1, 2}, out)
	//
	out, err = Serialize(nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestSerializeOverflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	big := NewNode("big").Bytes(make([]byte, 70000))
	small := NewNode("small").U16(1)
	root := NewNode("root").Link16(big).Link16(small)
	_, err := Serialize(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOffsetOverflow))
	//
	root = NewNode("root").Link32(big).Link32(small)
	_, err = Serialize(root)
	assert.NoError(t, err, "expected 32-bit offsets to reach beyond 64K")
}

func TestSerializeBackLink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otcodec.fonts")
	defer teardown()
	//
	root := NewNode("root").U16(0)
	child := NewNode("child").Link16(root)
	root.Link16(child)
	_, err := Serialize(root)
	assert.True(t, errors.Is(err, ErrOffsetOverflow), "expected link to a preceding table to fail")
}
