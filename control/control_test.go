package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamMode_String(t *testing.T) {
	assert.Equal(t, "AVRO", StreamAvro.String())
	assert.Equal(t, "JSON", StreamJSON.String())
	assert.Equal(t, "UNKNOWN", StreamMode(99).String())
}
