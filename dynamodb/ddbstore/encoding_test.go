package ddbstore

import (
	"bytes"
	"testing"

	"github.com/acksell/objectctx/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNumber_Ordering(t *testing.T) {
	values := []string{"-1000", "-1.5", "-1", "0", "0.25", "1", "2", "10", "1e3", "123456789"}
	var prev []byte
	for _, v := range values {
		enc, err := encodeNumber(v)
		require.NoError(t, err)
		if prev != nil {
			assert.Negative(t, bytes.Compare(prev, enc), "expected %s to sort after its predecessor", v)
		}
		prev = enc
	}
}

func TestEncodeNumber_OrderingBeyondFloatPrecision(t *testing.T) {
	tests := []struct {
		name        string
		lower, high string
	}{
		{name: "positive same float", lower: "9007199254740992", high: "9007199254740993"},
		{name: "negative same float", lower: "-9007199254740993", high: "-9007199254740992"},
		{name: "digit count differs", lower: "9999999999999999", high: "10000000000000000"},
		{name: "int64 bounds", lower: "-9223372036854775808", high: "9223372036854775807"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, err := encodeNumber(tt.lower)
			require.NoError(t, err)
			high, err := encodeNumber(tt.high)
			require.NoError(t, err)
			assert.Negative(t, bytes.Compare(lower, high))
		})
	}
}

func TestEncodeNumber_Canonical(t *testing.T) {
	for _, pair := range [][2]string{{"7", "7.0"}, {"0", "-0"}, {"1000", "1e3"}} {
		a, err := encodeNumber(pair[0])
		require.NoError(t, err)
		b, err := encodeNumber(pair[1])
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s vs %s", pair[0], pair[1])
	}
}

func TestKeyEncoder_EscapesSeparators(t *testing.T) {
	enc := NewKeyEncoder("t", singleTableDesign.KeyDefinitions)
	key, err := enc.EncodeKey(table.PrimaryKey{
		Definition: singleTableDesign.KeyDefinitions,
		Values:     table.PrimaryKeyValues{PartitionKey: "a\x00b", SortKey: "c"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(key, enc.TablePrefix()))
	assert.Equal(t, 2, bytes.Count(key, []byte{keySeparator}))
}

func TestSerializeItem_RoundTrip(t *testing.T) {
	item := map[string]types.AttributeValue{
		"id":     &types.AttributeValueMemberN{Value: "1"},
		"title":  &types.AttributeValueMemberS{Value: "Kazan"},
		"closed": &types.AttributeValueMemberBOOL{Value: true},
		"photos": &types.AttributeValueMemberB{Value: []byte(`[{"id":1}]`)},
		"meta": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"tags": &types.AttributeValueMemberL{Value: []types.AttributeValue{
				&types.AttributeValueMemberS{Value: "a"},
			}},
		}},
	}
	data, err := SerializeItem(item)
	require.NoError(t, err)
	got, err := DeserializeItem(data)
	require.NoError(t, err)
	assert.Equal(t, item, got)
}
