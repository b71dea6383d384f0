package intake

import "strings"

// Fields holds the scalar form values and the selected feature set. Every key
// of FieldNames is always present.
type Fields struct {
	values   map[string]string
	features map[string]struct{}
}

func NewFields() *Fields {
	f := &Fields{}
	f.Reset()
	return f
}

func (f *Fields) SetField(name, value string) error {
	if !IsField(name) {
		return ErrUnknownField
	}
	f.values[name] = value
	return nil
}

func (f *Fields) Field(name string) (string, error) {
	if !IsField(name) {
		return "", ErrUnknownField
	}
	return f.values[name], nil
}

// ToggleFeature inserts the feature when absent and removes it when present.
func (f *Fields) ToggleFeature(feature string) error {
	if !IsFeature(feature) {
		return ErrUnknownFeature
	}
	if _, ok := f.features[feature]; ok {
		delete(f.features, feature)
		return nil
	}
	f.features[feature] = struct{}{}
	return nil
}

func (f *Fields) HasFeature(feature string) bool {
	_, ok := f.features[feature]
	return ok
}

func (f *Fields) Features() []string {
	out := make([]string, 0, len(f.features))
	for _, feature := range FeatureCatalog {
		if _, ok := f.features[feature]; ok {
			out = append(out, feature)
		}
	}
	return out
}

func (f *Fields) Reset() {
	f.values = make(map[string]string, len(FieldNames))
	for _, name := range FieldNames {
		f.values[name] = ""
	}
	f.features = make(map[string]struct{})
}

// MissingRequired lists the required fields that are blank.
func (f *Fields) MissingRequired() []string {
	var missing []string
	for _, name := range RequiredFields {
		if strings.TrimSpace(f.values[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// FieldsSnapshot is a detached copy of the container.
type FieldsSnapshot struct {
	Values   map[string]string
	Features []string
}

func (f *Fields) Snapshot() FieldsSnapshot {
	values := make(map[string]string, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	return FieldsSnapshot{Values: values, Features: f.Features()}
}
