package pdx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshal parses script text and stores the result in the struct pointed to by v.
//
// Unmarshal uses struct tags to map keys to struct fields:
//   - `pdx:"key"` - maps key "key" to this field
//   - `pdx:"key,required"` - fails when the key is missing
//   - `pdx:"-"` - ignores this field
//
// Untagged fields use the lowercased field name. A field of type Value or
// *Document receives the parsed value unchanged.
//
// Example:
//
//	type Title struct {
//	    Color    [3]int `pdx:"color"`
//	    Capital  int    `pdx:"capital"`
//	    Landless bool   `pdx:"landless"`
//	    Allow    pdx.Value `pdx:"allow"`
//	}
func Unmarshal(data []byte, v any) error {
	doc, err := defaultParser.ParseBytes(data)
	if err != nil {
		return err
	}
	return Decode(doc, v)
}

// Decode stores a parsed document in the struct pointed to by v.
func Decode(doc *Document, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer")
	}

	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("decode target must be a pointer to struct")
	}
	return decodeStruct(doc, elem)
}

var (
	valueType    = reflect.TypeOf((*Value)(nil)).Elem()
	documentType = reflect.TypeOf((*Document)(nil))
	dateType     = reflect.TypeOf(Date{})
)

func decodeStruct(doc *Document, v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		tag := field.Tag.Get("pdx")
		if tag == "-" {
			continue
		}

		name, opts := parseTag(tag)
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		value, ok := doc.Get(name)
		if !ok {
			if hasOption(opts, "required") {
				return fmt.Errorf("required key %s not found", name)
			}
			continue
		}

		if err := setField(fieldValue, value); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	return nil
}

func setField(field reflect.Value, value Value) error {
	if value == nil {
		return nil
	}

	switch field.Type() {
	case valueType:
		field.Set(reflect.ValueOf(value))
		return nil
	case documentType:
		d, ok := value.(*Document)
		if !ok {
			return fmt.Errorf("cannot convert %T to block", value)
		}
		field.Set(reflect.ValueOf(d))
		return nil
	case dateType:
		return setDate(field, value)
	}

	switch field.Kind() {
	case reflect.String:
		return setString(field, value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(field, value)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUint(field, value)
	case reflect.Float32, reflect.Float64:
		return setFloat(field, value)
	case reflect.Bool:
		return setBool(field, value)
	case reflect.Slice:
		return setSlice(field, value)
	case reflect.Array:
		return setArray(field, value)
	case reflect.Map:
		return setMap(field, value)
	case reflect.Struct:
		return setStruct(field, value)
	case reflect.Pointer:
		return setPointer(field, value)
	case reflect.Interface:
		rv := reflect.ValueOf(value)
		if !rv.Type().AssignableTo(field.Type()) {
			return fmt.Errorf("cannot assign %T to %s", value, field.Type())
		}
		field.Set(rv)
		return nil
	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}
}

func setString(field reflect.Value, value Value) error {
	switch v := value.(type) {
	case String:
		field.SetString(string(v))
	case *Document, List:
		return fmt.Errorf("cannot convert %T to string", v)
	default:
		field.SetString(Text(v))
	}
	return nil
}

func setInt(field reflect.Value, value Value) error {
	var i int64
	switch v := value.(type) {
	case Integer:
		i = int64(v)
	case Float:
		i = int64(v)
	case String:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse as int: %w", err)
		}
		i = n
	default:
		return fmt.Errorf("cannot convert %T to int", v)
	}
	if field.OverflowInt(i) {
		return fmt.Errorf("%d overflows %s", i, field.Type())
	}
	field.SetInt(i)
	return nil
}

func setUint(field reflect.Value, value Value) error {
	var u uint64
	switch v := value.(type) {
	case Integer:
		if v < 0 {
			return fmt.Errorf("cannot store negative %d in %s", v, field.Type())
		}
		u = uint64(v)
	case String:
		n, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse as uint: %w", err)
		}
		u = n
	default:
		return fmt.Errorf("cannot convert %T to uint", v)
	}
	if field.OverflowUint(u) {
		return fmt.Errorf("%d overflows %s", u, field.Type())
	}
	field.SetUint(u)
	return nil
}

func setFloat(field reflect.Value, value Value) error {
	switch v := value.(type) {
	case Float:
		field.SetFloat(float64(v))
	case Integer:
		field.SetFloat(float64(v))
	case String:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return fmt.Errorf("cannot parse as float: %w", err)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("cannot convert %T to float", v)
	}
	return nil
}

func setBool(field reflect.Value, value Value) error {
	switch v := value.(type) {
	case Boolean:
		field.SetBool(bool(v))
	default:
		return fmt.Errorf("cannot convert %T to bool", v)
	}
	return nil
}

func setDate(field reflect.Value, value Value) error {
	switch v := value.(type) {
	case Date:
		field.Set(reflect.ValueOf(v))
	case String:
		d, ok := ParseDate(string(v))
		if !ok {
			return fmt.Errorf("cannot parse %q as date", string(v))
		}
		field.Set(reflect.ValueOf(d))
	default:
		return fmt.Errorf("cannot convert %T to date", v)
	}
	return nil
}

// setSlice accepts a List, or a single value for keys that appeared once.
func setSlice(field reflect.Value, value Value) error {
	items, ok := value.(List)
	if !ok {
		items = List{value}
	}
	slice := reflect.MakeSlice(field.Type(), len(items), len(items))
	for i, item := range items {
		if err := setField(slice.Index(i), item); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	field.Set(slice)
	return nil
}

func setArray(field reflect.Value, value Value) error {
	items, ok := value.(List)
	if !ok {
		return fmt.Errorf("cannot convert %T to array", value)
	}
	if len(items) < field.Len() {
		return fmt.Errorf("need %d items, got %d", field.Len(), len(items))
	}
	for i := 0; i < field.Len(); i++ {
		if err := setField(field.Index(i), items[i]); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}

func setMap(field reflect.Value, value Value) error {
	doc, ok := value.(*Document)
	if !ok {
		return fmt.Errorf("cannot convert %T to map", value)
	}
	if field.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("map key must be a string, got %s", field.Type().Key())
	}
	m := reflect.MakeMapWithSize(field.Type(), doc.Len())
	for _, n := range doc.Nodes {
		elemValue := reflect.New(field.Type().Elem()).Elem()
		if err := setField(elemValue, n.Value); err != nil {
			return fmt.Errorf("key %s: %w", n.Key, err)
		}
		m.SetMapIndex(reflect.ValueOf(n.Key).Convert(field.Type().Key()), elemValue)
	}
	field.Set(m)
	return nil
}

func setStruct(field reflect.Value, value Value) error {
	doc, ok := value.(*Document)
	if !ok {
		return fmt.Errorf("cannot convert %T to struct", value)
	}
	return decodeStruct(doc, field)
}

func setPointer(field reflect.Value, value Value) error {
	ptr := reflect.New(field.Type().Elem())
	if err := setField(ptr.Elem(), value); err != nil {
		return err
	}
	field.Set(ptr)
	return nil
}

func parseTag(tag string) (string, []string) {
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

func hasOption(opts []string, option string) bool {
	for _, opt := range opts {
		if opt == option {
			return true
		}
	}
	return false
}
