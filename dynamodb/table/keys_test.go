package table

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var compositeTable = TableDefinition{
	Name: "composite",
	KeyDefinitions: PrimaryKeyDefinition{
		PartitionKey: KeyDef{Name: "pk", Kind: KeyKindS},
		SortKey:      KeyDef{Name: "sk", Kind: KeyKindN},
	},
}

func TestNumberKey(t *testing.T) {
	cities := IDTable("city")

	t.Run("ddb form", func(t *testing.T) {
		key := NumberKey(cities.KeyDefinitions, int64(-42))
		doc, err := key.DDB()
		require.NoError(t, err)
		assert.Equal(t, map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberN{Value: "-42"},
		}, doc)
	})

	t.Run("matches extracted key", func(t *testing.T) {
		extracted, err := cities.ExtractPrimaryKey(map[string]types.AttributeValue{
			"id":    &types.AttributeValueMemberN{Value: "7"},
			"title": &types.AttributeValueMemberS{Value: "Kazan"},
		})
		require.NoError(t, err)
		assert.Equal(t, NumberKey(cities.KeyDefinitions, 7).String(), extracted.String())
	})
}

func TestExtractPrimaryKey(t *testing.T) {
	t.Run("composite", func(t *testing.T) {
		pk, err := compositeTable.ExtractPrimaryKey(map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: "city"},
			"sk": &types.AttributeValueMemberN{Value: "1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "city", pk.Values.PartitionKey)
		assert.Equal(t, "1", pk.Values.SortKey)
		assert.Equal(t, "pk=city,sk=1", pk.String())
	})

	t.Run("missing sort key", func(t *testing.T) {
		_, err := compositeTable.ExtractPrimaryKey(map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: "city"},
		})
		require.Error(t, err)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		_, err := IDTable("city").ExtractPrimaryKey(map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: "seven"},
		})
		require.Error(t, err)
	})
}

func TestPrimaryKey_DDB_Errors(t *testing.T) {
	t.Run("missing sort key value", func(t *testing.T) {
		_, err := PrimaryKey{
			Definition: compositeTable.KeyDefinitions,
			Values:     PrimaryKeyValues{PartitionKey: "city"},
		}.DDB()
		require.Error(t, err)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := PrimaryKey{
			Definition: IDTable("city").KeyDefinitions,
			Values:     PrimaryKeyValues{PartitionKey: "abc"},
		}.DDB()
		require.Error(t, err)
	})

	t.Run("wrong go type", func(t *testing.T) {
		_, err := PrimaryKey{
			Definition: IDTable("city").KeyDefinitions,
			Values:     PrimaryKeyValues{PartitionKey: true},
		}.DDB()
		require.Error(t, err)
	})
}
