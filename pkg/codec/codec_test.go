package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "discussly/pkg/domain-errors"
)

type imageMeta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

func TestEncodeDecode(t *testing.T) {
	blob, err := Encode(imageMeta{Width: 800, Height: 600, Alt: "sunset"})
	require.NoError(t, err)

	res := Decode[imageMeta](blob)
	require.True(t, res.IsSuccess())
	assert.Equal(t, imageMeta{Width: 800, Height: 600, Alt: "sunset"}, res.MustValue())
}

func TestDecode_InvalidBlob(t *testing.T) {
	res := Decode[imageMeta]("{not json")
	require.True(t, res.IsFailure())
	assert.True(t, dErrors.Is(res.Err(), dErrors.KindValidation))
	assert.Contains(t, res.Err().Error(), "invalid metadata format")
}

func TestDecode_ShapeMismatch(t *testing.T) {
	res := Decode[imageMeta](`{"width":"wide"}`)
	assert.True(t, res.IsFailure())
}
