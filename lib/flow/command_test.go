package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/snowflow/lib/config/constants"
)

func TestResolveCommand(t *testing.T) {
	// Defaults to write
	assert.Equal(t, constants.Write, ResolveCommand("", ""))
	// Inherited
	assert.Equal(t, constants.WriteNX, ResolveCommand("", constants.WriteNX))
	// Own command wins over the inherited one
	assert.Equal(t, constants.Write, ResolveCommand(constants.Write, constants.WriteNX))
	assert.Equal(t, constants.WriteNX, ResolveCommand(constants.WriteNX, constants.Write))
	assert.Equal(t, constants.Skip, ResolveCommand(constants.Skip, constants.Write))
}

func TestResolveCommandChain(t *testing.T) {
	assert.Equal(t, constants.Write, ResolveCommandChain())
	assert.Equal(t, constants.Write, ResolveCommandChain("", "", ""))
	assert.Equal(t, constants.WriteNX, ResolveCommandChain(constants.WriteNX, "", ""))
	assert.Equal(t, constants.Write, ResolveCommandChain(constants.WriteNX, constants.Write, ""))
	// A skipped ancestor wins over whatever its descendants declare.
	assert.Equal(t, constants.Skip, ResolveCommandChain(constants.Write, constants.Skip, constants.WriteNX))
	assert.Equal(t, constants.Skip, ResolveCommandChain(constants.Skip, constants.Write))
	assert.Equal(t, constants.Skip, ResolveCommandChain("", "", constants.Skip))
}
