package entity

import (
	"fmt"
	"reflect"
)

// FromRow builds a T from a column->value map as returned by a driver's
// MapScan. Columns without a mapped field are ignored; nil values leave the
// field at its zero value.
func (m *Mapper[T]) FromRow(row map[string]interface{}) (*T, error) {
	v := new(T)
	rv := reflect.ValueOf(v).Elem()
	for col, val := range row {
		idx, ok := m.fields[col]
		if !ok || val == nil {
			continue
		}
		if err := assign(rv.FieldByIndex(idx), reflect.ValueOf(val)); err != nil {
			return nil, fmt.Errorf("%s column %q: %w", m.table.QualifiedName(), col, err)
		}
	}
	return v, nil
}

func assign(dst, src reflect.Value) error {
	if src.Kind() == reflect.Ptr {
		if src.IsNil() {
			return nil
		}
		src = src.Elem()
	}

	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
		return nil
	case dst.Kind() == reflect.Ptr:
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case convertible(src.Type(), dst.Type()):
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %s to field of type %s", src.Type(), dst.Type())
}

// convertible limits reflect conversions to numeric widening/narrowing and
// types sharing an underlying type, such as two [16]byte UUID types. String
// to and from integer conversions are refused.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	if isNumeric(from.Kind()) && isNumeric(to.Kind()) {
		return true
	}
	return from.Kind() == to.Kind()
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
