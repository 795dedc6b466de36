package generator

import (
	"reflect"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/sharedcode/premortem"
)

// Fields the generator must not produce; the admission gate fills them in.
var gateOwnedFields = map[string]bool{
	"authoritativeLookup": true,
}

var (
	analysisSchemaOnce sync.Once
	analysisSchema     *genai.Schema
)

// AnalysisSchema returns the response schema for premortem.PreMortemAnalysis.
// Every field is required except those the gate owns.
func AnalysisSchema() *genai.Schema {
	analysisSchemaOnce.Do(func() {
		analysisSchema = schemaOf(reflect.TypeOf(premortem.PreMortemAnalysis{}))
	})
	return analysisSchema
}

func schemaOf(t reflect.Type) *genai.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return &genai.Schema{Type: genai.TypeString}
	case reflect.Bool:
		return &genai.Schema{Type: genai.TypeBoolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return &genai.Schema{Type: genai.TypeNumber}
	case reflect.Slice, reflect.Array:
		return &genai.Schema{Type: genai.TypeArray, Items: schemaOf(t.Elem())}
	case reflect.Struct:
		s := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if !f.IsExported() || name == "" || name == "-" || gateOwnedFields[name] {
				continue
			}
			s.Properties[name] = schemaOf(f.Type)
			s.PropertyOrdering = append(s.PropertyOrdering, name)
			s.Required = append(s.Required, name)
		}
		return s
	}
	return &genai.Schema{Type: genai.TypeString}
}
