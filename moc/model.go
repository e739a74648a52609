package moc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/acksell/objectctx/dynamodb/table"
)

// Model maps entity names to the tables that store them.
// Every entity gets its own table keyed by the numeric "id" attribute.
type Model struct {
	prefix string
	tables map[string]table.TableDefinition
}

// NewModel creates an empty model. Table names are the entity names with prefix prepended.
func NewModel(prefix string) *Model {
	return &Model{
		prefix: prefix,
		tables: make(map[string]table.TableDefinition),
	}
}

// Register adds the kinds of the given entities to the model.
// The entities are only used for their EntityName.
func (m *Model) Register(entities ...Entity) *Model {
	for _, e := range entities {
		name := e.EntityName()
		m.tables[name] = table.IDTable(m.prefix + name)
	}
	return m
}

func (m *Model) Table(entityName string) (table.TableDefinition, error) {
	t, ok := m.tables[entityName]
	if !ok {
		return table.TableDefinition{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entityName)
	}
	return t, nil
}

// Tables returns all table definitions sorted by table name.
func (m *Model) Tables() []table.TableDefinition {
	defs := make([]table.TableDefinition, 0, len(m.tables))
	for _, t := range m.tables {
		defs = append(defs, t)
	}
	slices.SortFunc(defs, func(a, b table.TableDefinition) int {
		return strings.Compare(a.Name, b.Name)
	})
	return defs
}

// EntityNames returns the registered entity names, sorted.
func (m *Model) EntityNames() []string {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
