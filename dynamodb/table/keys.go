package table

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/exp/constraints"
)

type PrimaryKeyDefinition struct {
	PartitionKey KeyDef
	SortKey      KeyDef // empty Name means the table has no sort key
}

type KeyDef struct {
	Name string
	Kind KeyKind
}

type KeyKind string

const (
	KeyKindS KeyKind = "S"
	KeyKindN KeyKind = "N"
	KeyKindB KeyKind = "B"
)

// Numbers extracted from documents are kept in their string form, the same
// way dynamo transports them.
type PrimaryKeyValues struct {
	PartitionKey any
	SortKey      any
}

type PrimaryKey struct {
	Definition PrimaryKeyDefinition
	Values     PrimaryKeyValues
}

// NumberKey builds a partition-only key for a numeric partition key definition.
func NumberKey[N constraints.Integer](def PrimaryKeyDefinition, n N) PrimaryKey {
	return PrimaryKey{
		Definition: def,
		Values: PrimaryKeyValues{
			PartitionKey: strconv.FormatInt(int64(n), 10),
		},
	}
}

// String is a stable representation usable as a map key.
// A number given as int64 and the same number in string form are equal.
func (k PrimaryKey) String() string {
	if k.Definition.SortKey.Name == "" {
		return fmt.Sprintf("%s=%v", k.Definition.PartitionKey.Name, k.Values.PartitionKey)
	}
	return fmt.Sprintf("%s=%v,%s=%v", k.Definition.PartitionKey.Name, k.Values.PartitionKey, k.Definition.SortKey.Name, k.Values.SortKey)
}

func (k PrimaryKey) DDB() (map[string]types.AttributeValue, error) {
	pk, err := keyAttributeValue(k.Definition.PartitionKey.Kind, k.Values.PartitionKey)
	if err != nil {
		return nil, fmt.Errorf("partition key %q: %w", k.Definition.PartitionKey.Name, err)
	}
	if k.Definition.SortKey.Name == "" {
		return map[string]types.AttributeValue{
			k.Definition.PartitionKey.Name: pk,
		}, nil
	}
	if k.Values.SortKey == nil {
		return nil, fmt.Errorf("sort key %q is required but got nil", k.Definition.SortKey.Name)
	}
	sk, err := keyAttributeValue(k.Definition.SortKey.Kind, k.Values.SortKey)
	if err != nil {
		return nil, fmt.Errorf("sort key %q: %w", k.Definition.SortKey.Name, err)
	}
	return map[string]types.AttributeValue{
		k.Definition.PartitionKey.Name: pk,
		k.Definition.SortKey.Name:      sk,
	}, nil
}

func keyAttributeValue(kind KeyKind, v any) (types.AttributeValue, error) {
	// numeric strings come from ExtractPrimaryKey and NumberKey
	if s, ok := v.(string); ok && kind == KeyKindN {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", s, err)
		}
		return &types.AttributeValueMemberN{Value: s}, nil
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value of type %T: %w", v, err)
	}
	if err := attributeMatchesDefinition(kind, av); err != nil {
		return nil, err
	}
	return av, nil
}

func attributeMatchesDefinition(want KeyKind, v types.AttributeValue) error {
	var got KeyKind
	switch v.(type) {
	case *types.AttributeValueMemberS:
		got = KeyKindS
	case *types.AttributeValueMemberN:
		got = KeyKindN
	case *types.AttributeValueMemberB:
		got = KeyKindB
	default:
		return fmt.Errorf("unexpected key attribute type %T", v)
	}
	if got != want {
		return fmt.Errorf("got KeyKind %q want %q", got, want)
	}
	return nil
}
