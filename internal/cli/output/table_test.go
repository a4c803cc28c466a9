package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTable(t *testing.T) {
	data := NewTableData("id", "name")
	data.AddRow("a1", "Starlink Group 6-1")
	data.AddRow("b2", "Artemis III")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, data))
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Starlink Group 6-1")
	assert.Contains(t, out, "Artemis III")
	assert.Less(t, strings.Index(out, "Starlink Group 6-1"), strings.Index(out, "Artemis III"))
	assert.Less(t, strings.Index(out, "NAME"), strings.Index(out, "Starlink Group 6-1"))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"rows": 2}))
	assert.Equal(t, "{\n  \"rows\": 2\n}\n", buf.String())
}
