package project

import (
	"errors"
	"fmt"

	"go.yaml.in/yaml/v3"
)

type SerializationError struct {
	Op  string // "serialize" or "deserialize"
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to %s project: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

type UnexpectedKindError struct {
	Expected string
	Actual   string
}

func (e *UnexpectedKindError) Error() string {
	return fmt.Sprintf("unexpected kind: expected '%s', got '%s'", e.Expected, e.Actual)
}

type projectDoc struct {
	APIVersion string       `yaml:"apiVersion"`
	Kind       string       `yaml:"kind"`
	Metadata   metadataDoc  `yaml:"metadata"`
	Spec       *projectSpec `yaml:"spec,omitempty"`
}

type metadataDoc struct {
	Name string `yaml:"name"`
}

type projectSpec struct {
	Tables []tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description"`
	HasHeader     bool              `yaml:"hasHeader"`
	Source        sourceDoc         `yaml:"source"`
	Columns       []columnDoc       `yaml:"columns"`
	Relationships []relationshipDoc `yaml:"relationships,omitempty"`
}

type sourceDoc struct {
	File *fileSourceDoc `yaml:"file,omitempty"`
	Cmd  *cmdSourceDoc  `yaml:"cmd,omitempty"`
}

type fileSourceDoc struct {
	Filename          string `yaml:"filename"`
	CharacterEncoding string `yaml:"characterEncoding"`
}

type cmdSourceDoc struct {
	Command           string   `yaml:"command"`
	Args              []string `yaml:"args,omitempty"`
	Stdout            bool     `yaml:"stdout"`
	CharacterEncoding string   `yaml:"characterEncoding"`
}

type columnDoc struct {
	Name             string        `yaml:"name"`
	Description      string        `yaml:"description"`
	ColumnIdentifier identifierDoc `yaml:"columnIdentifier"`
	Type             string        `yaml:"type"`
}

type relationshipDoc struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	SourceColumn string `yaml:"sourceColumn"`
	TargetTable  string `yaml:"targetTable"`
	TargetColumn string `yaml:"targetColumn"`
}

// identifierDoc is an integer index or a header name; the YAML tag decides.
type identifierDoc struct {
	id  ColumnIdentifier
	set bool
}

func (d *identifierDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: columnIdentifier must be an integer index or a header name", node.Line)
	}
	if node.Tag == "!!int" {
		var i int
		if err := node.Decode(&i); err != nil {
			return err
		}
		if i < 0 {
			return fmt.Errorf("line %d: column index must be non-negative, got %d", node.Line, i)
		}
		d.id, d.set = IndexIdentifier(i), true
		return nil
	}
	d.id, d.set = NameIdentifier(node.Value), true
	return nil
}

func (d identifierDoc) MarshalYAML() (any, error) {
	if name, ok := d.id.Name(); ok {
		return name, nil
	}
	i, _ := d.id.Index()
	return i, nil
}

// Serialize renders p as a project YAML document.
func Serialize(p *Project) (string, error) {
	doc := projectDoc{
		APIVersion: p.APIVersion,
		Kind:       Kind,
		Metadata:   metadataDoc{Name: p.Name},
	}
	if len(p.Tables) > 0 {
		doc.Spec = &projectSpec{}
		for _, t := range p.Tables {
			td, err := tableToDoc(t)
			if err != nil {
				return "", &SerializationError{Op: "serialize", Err: err}
			}
			doc.Spec.Tables = append(doc.Spec.Tables, td)
		}
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", &SerializationError{Op: "serialize", Err: err}
	}
	return string(out), nil
}

// Deserialize parses a project YAML document.
func Deserialize(content string) (*Project, error) {
	var doc projectDoc
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, &SerializationError{Op: "deserialize", Err: err}
	}
	if doc.Kind != Kind {
		return nil, &UnexpectedKindError{Expected: Kind, Actual: doc.Kind}
	}

	p := &Project{Name: doc.Metadata.Name, APIVersion: doc.APIVersion}
	if doc.Spec == nil {
		return p, nil
	}
	for _, td := range doc.Spec.Tables {
		t, err := tableFromDoc(td)
		if err != nil {
			return nil, &SerializationError{Op: "deserialize", Err: err}
		}
		p.Tables = append(p.Tables, t)
	}
	return p, nil
}

func tableToDoc(t TableSpec) (tableDoc, error) {
	td := tableDoc{
		Name:        t.Name,
		Description: t.Description,
		HasHeader:   t.HasHeader,
	}
	switch s := t.Source.(type) {
	case FileSource:
		td.Source.File = &fileSourceDoc{Filename: s.Filename, CharacterEncoding: s.CharacterEncoding}
	case CmdSource:
		td.Source.Cmd = &cmdSourceDoc{
			Command:           s.Command,
			Args:              s.Args,
			Stdout:            s.Stdout,
			CharacterEncoding: s.CharacterEncoding,
		}
	default:
		return td, fmt.Errorf("table '%s' has no source", t.Name)
	}
	for _, c := range t.Columns {
		td.Columns = append(td.Columns, columnDoc{
			Name:             c.Name,
			Description:      c.Description,
			ColumnIdentifier: identifierDoc{id: c.Identifier, set: true},
			Type:             c.Type.String(),
		})
	}
	for _, r := range t.Relationships {
		td.Relationships = append(td.Relationships, relationshipDoc(r))
	}
	return td, nil
}

func tableFromDoc(td tableDoc) (TableSpec, error) {
	t := TableSpec{
		Name:        td.Name,
		Description: td.Description,
		HasHeader:   td.HasHeader,
	}

	switch {
	case td.Source.File != nil && td.Source.Cmd != nil:
		return t, fmt.Errorf("table '%s': source must declare exactly one of file or cmd", td.Name)
	case td.Source.File != nil:
		t.Source = FileSource{
			Filename:          td.Source.File.Filename,
			CharacterEncoding: withDefaultEncoding(td.Source.File.CharacterEncoding),
		}
	case td.Source.Cmd != nil:
		if td.Source.Cmd.Command == "" {
			return t, fmt.Errorf("table '%s': cmd source has no command", td.Name)
		}
		t.Source = CmdSource{
			Command:           td.Source.Cmd.Command,
			Args:              td.Source.Cmd.Args,
			Stdout:            td.Source.Cmd.Stdout,
			CharacterEncoding: withDefaultEncoding(td.Source.Cmd.CharacterEncoding),
		}
	default:
		return t, errors.New("table '" + td.Name + "': missing source")
	}

	for _, cd := range td.Columns {
		ct, err := ParseColumnType(cd.Type)
		if err != nil {
			return t, fmt.Errorf("table '%s' column '%s': %w", td.Name, cd.Name, err)
		}
		if !cd.ColumnIdentifier.set {
			return t, fmt.Errorf("table '%s' column '%s': missing columnIdentifier", td.Name, cd.Name)
		}
		t.Columns = append(t.Columns, ColumnSpec{
			Name:        cd.Name,
			Description: cd.Description,
			Identifier:  cd.ColumnIdentifier.id,
			Type:        ct,
		})
	}
	for _, rd := range td.Relationships {
		t.Relationships = append(t.Relationships, RelationshipSpec(rd))
	}
	return t, nil
}

func withDefaultEncoding(enc string) string {
	if enc == "" {
		return DefaultCharacterEncoding
	}
	return enc
}
