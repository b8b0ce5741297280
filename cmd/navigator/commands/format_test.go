package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOptional(t *testing.T) {
	v := 3.456
	assert.Equal(t, "-", formatOptional(nil, "%.2f"))
	assert.Equal(t, "3.46", formatOptional(&v, "%.2f"))
	assert.Equal(t, "+3.46", formatOptional(&v, "%+.2f"))
}

func TestFormatPassed(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, "-", formatPassed(nil))
	assert.Equal(t, "yes", formatPassed(&yes))
	assert.Equal(t, "no", formatPassed(&no))
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"api", "migrate", "import", "benchmark", "export", "scheduler"} {
		assert.True(t, names[want], want)
	}
}

func TestMigrateRejectsUnknownArg(t *testing.T) {
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{"sideways"}))
	assert.NoError(t, migrateCmd.Args(migrateCmd, []string{"up"}))
}
