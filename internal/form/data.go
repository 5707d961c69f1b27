package form

import "slices"

// File is a binary form value such as a face capture.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Entry is a single name/value pair. Exactly one of Value and File is meaningful:
// File is non-nil for file entries.
type Entry struct {
	Name  string
	Value string
	File  *File
}

// IsFile reports whether the entry carries a file.
func (e Entry) IsFile() bool {
	return e.File != nil
}

// Data is an ordered collection of form entries. Names may repeat and
// insertion order is kept, so what goes in is exactly what gets encoded.
type Data struct {
	entries []Entry
}

// NewData creates Form Data seeded with the default values of the definition
// (hidden inputs like CSRF tokens). A nil definition yields empty data.
func NewData(def *Definition) *Data {
	d := &Data{}
	if def == nil {
		return d
	}
	for _, f := range def.Fields {
		if f.Value == "" || f.IsFile() {
			continue
		}
		d.Append(f.Name, f.Value)
	}
	return d
}

// Append adds a text entry after all existing entries.
func (d *Data) Append(name, value string) {
	d.entries = append(d.entries, Entry{Name: name, Value: value})
}

// AppendFile adds a file entry after all existing entries.
func (d *Data) AppendFile(name string, file *File) {
	d.entries = append(d.entries, Entry{Name: name, File: file})
}

// Set replaces every entry named name with a single text entry placed where
// the first one was. If there is none, the entry is appended.
func (d *Data) Set(name, value string) {
	d.set(Entry{Name: name, Value: value})
}

// SetFile is Set for file entries.
func (d *Data) SetFile(name string, file *File) {
	d.set(Entry{Name: name, File: file})
}

func (d *Data) set(e Entry) {
	idx := slices.IndexFunc(d.entries, func(x Entry) bool { return x.Name == e.Name })
	if idx < 0 {
		d.entries = append(d.entries, e)
		return
	}
	d.entries[idx] = e
	tail := slices.DeleteFunc(d.entries[idx+1:], func(x Entry) bool { return x.Name == e.Name })
	d.entries = d.entries[:idx+1+len(tail)]
}

// Get returns the first entry with the given name.
func (d *Data) Get(name string) (Entry, bool) {
	for _, e := range d.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Value returns the text value of the first entry with the given name,
// or an empty string.
func (d *Data) Value(name string) string {
	e, _ := d.Get(name)
	return e.Value
}

// Has reports whether an entry with the given name exists.
func (d *Data) Has(name string) bool {
	_, ok := d.Get(name)
	return ok
}

// Delete removes all entries with the given name.
func (d *Data) Delete(name string) {
	d.entries = slices.DeleteFunc(d.entries, func(e Entry) bool { return e.Name == name })
}

// Entries returns a copy of all entries in order.
func (d *Data) Entries() []Entry {
	return slices.Clone(d.entries)
}

// Names returns entry names in order, repeated names included.
func (d *Data) Names() []string {
	names := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		names = append(names, e.Name)
	}
	return names
}

// Len returns the number of entries.
func (d *Data) Len() int {
	return len(d.entries)
}

// Clone returns an independent copy. File contents are shared.
func (d *Data) Clone() *Data {
	return &Data{entries: slices.Clone(d.entries)}
}
