package build

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.2.3"
	s := String()
	assert.True(t, strings.HasPrefix(s, "v1.2.3 (commit "))
	assert.Contains(t, s, runtime.Version())
}
