package ddbstore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/acksell/objectctx/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func ptrStr(s string) *string {
	return &s
}

func extractKeyAttributes(item map[string]types.AttributeValue, keyDef table.PrimaryKeyDefinition) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue)
	if pk, ok := item[keyDef.PartitionKey.Name]; ok {
		result[keyDef.PartitionKey.Name] = pk
	}
	if keyDef.SortKey.Name != "" {
		if sk, ok := item[keyDef.SortKey.Name]; ok {
			result[keyDef.SortKey.Name] = sk
		}
	}
	return result
}

// Only the existence functions are understood, which is what create and
// delete guards need. Anything else is rejected rather than ignored.
var conditionPattern = regexp.MustCompile(`^\s*(attribute_exists|attribute_not_exists)\s*\(\s*([^\s()]+)\s*\)\s*$`)

// evalCondition evaluates a condition expression against item, which is nil
// when the item does not exist.
func evalCondition(expr *string, names map[string]string, item map[string]types.AttributeValue) (bool, error) {
	if expr == nil || strings.TrimSpace(*expr) == "" {
		return true, nil
	}
	m := conditionPattern.FindStringSubmatch(*expr)
	if m == nil {
		return false, fmt.Errorf("unsupported condition expression %q", *expr)
	}
	path, err := resolvePath(m[2], names)
	if err != nil {
		return false, err
	}
	exists := pathExists(item, path)
	if m[1] == "attribute_exists" {
		return exists, nil
	}
	return !exists, nil
}

func resolvePath(raw string, names map[string]string) ([]string, error) {
	parts := strings.Split(raw, ".")
	for i, p := range parts {
		if !strings.HasPrefix(p, "#") {
			continue
		}
		name, ok := names[p]
		if !ok {
			return nil, fmt.Errorf("expression attribute name %q is not defined", p)
		}
		parts[i] = name
	}
	return parts, nil
}

func pathExists(item map[string]types.AttributeValue, path []string) bool {
	current := item
	for i, p := range path {
		av, ok := current[p]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		m, ok := av.(*types.AttributeValueMemberM)
		if !ok {
			return false
		}
		current = m.Value
	}
	return false
}

func conditionalCheckFailed() error {
	return &types.ConditionalCheckFailedException{
		Message: ptrStr("The conditional request failed"),
	}
}
