package spec

// Schema document model consumed by the declaration compiler. The model keeps
// the declaration order of every mapping in the source document.

// Section names one group of definitions under #/components.
type Section string

const (
	Schemas       Section = "schemas"
	Responses     Section = "responses"
	RequestBodies Section = "requestBodies"
	Parameters    Section = "parameters"
)

// Sections lists the compiled sections in emission order.
var Sections = []Section{Schemas, Responses, RequestBodies, Parameters}

// Document is an immutable schema document. Only sections present in the
// source have a key in Components.
type Document struct {
	Title       string
	Version     string
	Description string
	Components  map[Section][]Entry
}

// Entry is one named definition of a section.
type Entry struct {
	Name string
	// Ref is set when the whole entry is a $ref. For schema entries Schema
	// also carries the reference as a KindRef node.
	Ref         string
	Description string
	// Schema holds the shape of a schemas entry or the schema of a parameter.
	Schema *Schema
	// Content holds the body definition of responses and requestBodies entries,
	// in declared content-type order.
	Content []Media
	// In and Required describe parameters.
	In       string
	Required bool
}

// Media is one content-type keyed representation of a body.
type Media struct {
	ContentType string
	Schema      *Schema
}

// Kind tags the variant carried by a Schema.
type Kind int

const (
	// KindAny carries no type information.
	KindAny Kind = iota
	KindPrimitive
	KindObject
	KindArray
	KindComposition
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindComposition:
		return "composition"
	case KindRef:
		return "ref"
	default:
		return "any"
	}
}

// Composition is the keyword of a composed schema.
type Composition string

const (
	OneOf Composition = "oneOf"
	AnyOf Composition = "anyOf"
	AllOf Composition = "allOf"
)

// Schema is a recursive data shape. Which fields are meaningful depends on Kind:
//
//	KindPrimitive    Type, Format, Enum
//	KindObject       Properties, Required, AdditionalProperties
//	KindArray        Items
//	KindComposition  Composition, Members (Properties may add an inline object part)
//	KindRef          Ref
type Schema struct {
	Kind        Kind
	Type        string
	Format      string
	Description string
	Nullable    bool

	Enum []any

	Properties           []Property
	Required             []string
	AdditionalProperties *Schema

	Items *Schema

	Composition Composition
	Members     []*Schema

	Ref string
}

// Property is a named object member, kept in declared order.
type Property struct {
	Name   string
	Schema *Schema
}

// Lookup returns the entry with the given name in section s.
func (d *Document) Lookup(s Section, name string) (Entry, bool) {
	for _, e := range d.Components[s] {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Section returns the ordered entries of s and whether the section is present.
func (d *Document) Section(s Section) ([]Entry, bool) {
	entries, ok := d.Components[s]
	return entries, ok
}

// HasComponents reports whether any compiled section is present.
func (d *Document) HasComponents() bool {
	for _, s := range Sections {
		if _, ok := d.Components[s]; ok {
			return true
		}
	}
	return false
}

// IsRequired reports whether name is listed in the schema's required set.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Property returns the schema of the named property, or nil.
func (s *Schema) Property(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}
