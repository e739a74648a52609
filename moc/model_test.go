package moc

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel(t *testing.T) {
	m := NewModel("store-").Register(&country{}, &city{})

	def, err := m.Table("City")
	require.NoError(t, err)
	assert.Equal(t, "store-City", def.Name)
	assert.Equal(t, "id", def.KeyDefinitions.PartitionKey.Name)

	_, err = m.Table("Product")
	require.ErrorIs(t, err, ErrUnknownEntity)

	tables := m.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "store-City", tables[0].Name)
	assert.Equal(t, "store-Country", tables[1].Name)
	assert.Equal(t, []string{"City", "Country"}, m.EntityNames())
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLogger(log.New(&buf, "", 0), false)
	l.Debugf("hidden")
	l.Warningf("two %s", "matches")
	assert.Equal(t, "WARNING: two matches\n", buf.String())

	buf.Reset()
	NewStdLogger(log.New(&buf, "", 0), true).Debugf("shown")
	assert.Equal(t, "DEBUG: shown\n", buf.String())
}
