package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/pitchnet-go/internal/conf"
)

func TestCommandFlags(t *testing.T) {
	cmd := Command(&conf.Settings{})

	for _, name := range []string{"source", "listsources", "export", "clippath", "processingtime", "telemetry", "listen"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "flag %q must exist", name)
	}
	assert.Equal(t, "realtime", cmd.Use)
}
