package schema

import "encoding/json"

// foreignKeyView replaces the Foreign pointer with the referenced table's
// name so serialized snapshots do not recurse into the target table.
type foreignKeyView struct {
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Table       string      `json:"table" yaml:"table"`
	TableSchema string      `json:"table_schema,omitempty" yaml:"table_schema,omitempty"`
	References  []Reference `json:"references" yaml:"references"`
	OnUpdate    string      `json:"on_update,omitempty" yaml:"on_update,omitempty"`
	OnDelete    string      `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
}

func (f *ForeignKey) view() foreignKeyView {
	v := foreignKeyView{
		Name:       f.Name,
		Table:      f.ForeignTableName(),
		References: f.References,
		OnUpdate:   f.OnUpdate,
		OnDelete:   f.OnDelete,
	}
	if f.Foreign != nil {
		v.TableSchema = f.Foreign.SchemaName
	}
	return v
}

func (f *ForeignKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.view())
}

func (f *ForeignKey) MarshalYAML() (any, error) {
	return f.view(), nil
}
