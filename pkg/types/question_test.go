// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHintSet(t *testing.T) {
	qs := []Question{
		{ID: 1, ModelHint: "Example Answer Apollo"},
		{ID: 4},
	}
	assert.Equal(t, map[int]string{1: "Example Answer Apollo", 4: ""}, HintSet(qs))
	assert.Empty(t, HintSet(nil))
}

func TestAnswerSetGet(t *testing.T) {
	var nilSet AnswerSet
	assert.Empty(t, nilSet.Get(1))
	assert.Equal(t, "TSA", AnswerSet{1: "TSA"}.Get(1))
}
