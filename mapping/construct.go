// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mapping

import (
	"reflect"

	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// newTarget builds an empty target instance for rm: the registered
// Factory for rm.Type if one exists, else a plain map[string]interface{}
// (MyBatis's own behavior for an unregistered/anonymous result type).
func (h *DefaultResultSetHandler) newTarget(rm *types.ResultMap) interface{} {
	if rm != nil {
		if f, ok := h.Factories[rm.Type]; ok {
			return f()
		}
	}
	return map[string]interface{}{}
}

// scalarConvert handles spec.md §4.3's "a scalar type handler can
// convert the single-column row directly" case: a ResultMap with no
// mappings over a one-column row.
func (h *DefaultResultSetHandler) scalarConvert(rm *types.ResultMap, row map[string]interface{}, cols []string) (interface{}, bool, error) {
	if rm != nil && len(rm.Mappings) > 0 {
		return nil, false, nil
	}
	if len(cols) != 1 {
		return nil, false, nil
	}
	javaType := ""
	if rm != nil {
		javaType = rm.Type
	}
	handler := h.Registry.Resolve(javaType, "")
	v, err := handler.FromDriver(row[cols[0]])
	return v, true, err
}

// setProperty assigns value to obj's property (a struct field by name, or
// a map entry). A struct field that value is not directly assignable to
// is filled via a plain cast keyed off the field's kind (see assign).
func setProperty(obj interface{}, property string, value interface{}) error {
	if m, ok := obj.(map[string]interface{}); ok {
		m[property] = value
		return nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("cannot set property %q on non-struct target %T", property, obj)
	}
	field := rv.Elem().FieldByName(property)
	if !field.IsValid() || !field.CanSet() {
		return errors.Errorf("no settable field %q on %T", property, obj)
	}
	return assign(field, value)
}

// appendProperty appends value onto obj's slice-typed property, creating
// the slice on first use.
func appendProperty(obj interface{}, property string, value interface{}) error {
	if m, ok := obj.(map[string]interface{}); ok {
		existing, _ := m[property].([]interface{})
		m[property] = append(existing, value)
		return nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("cannot append property %q on non-struct target %T", property, obj)
	}
	field := rv.Elem().FieldByName(property)
	if !field.IsValid() || !field.CanSet() {
		return errors.Errorf("no settable slice field %q on %T", property, obj)
	}
	if field.Kind() != reflect.Slice {
		return errors.Errorf("field %q is not a slice", property)
	}
	field.Set(reflect.Append(field, reflect.ValueOf(value)))
	return nil
}

// structFieldNames lists obj's exported field names, for auto-mapping a
// row's columns against a struct target. Returns nil for a map target or
// anything else that isn't a pointer-to-struct.
func structFieldNames(obj interface{}) []string {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	t := rv.Elem().Type()
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() {
			names = append(names, f.Name)
		}
	}
	return names
}

// setSliceProperty replaces obj's named property with the whole values
// list (a nested query bound to a collection property, per spec.md
// §4.3's one-to-many nested query case), converting each element to the
// target slice's element type when obj is a struct.
func setSliceProperty(obj interface{}, property string, values []interface{}) error {
	if m, ok := obj.(map[string]interface{}); ok {
		m[property] = values
		return nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("cannot set slice property %q on non-struct target %T", property, obj)
	}
	field := rv.Elem().FieldByName(property)
	if !field.IsValid() || !field.CanSet() || field.Kind() != reflect.Slice {
		return errors.Errorf("no settable slice field %q on %T", property, obj)
	}
	out := reflect.MakeSlice(field.Type(), 0, len(values))
	elemType := field.Type().Elem()
	for _, v := range values {
		elem := reflect.New(elemType).Elem()
		if err := assign(elem, v); err != nil {
			return err
		}
		out = reflect.Append(out, elem)
	}
	field.Set(out)
	return nil
}

func assign(field reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}
	fv := reflect.ValueOf(value)
	if fv.Type().AssignableTo(field.Type()) {
		field.Set(fv)
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(value)
		if err != nil {
			return err
		}
		field.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(value)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(value)
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Ptr:
		ptr := reflect.New(field.Type().Elem())
		if err := assign(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
	default:
		return errors.Errorf("cannot assign %T into field of kind %s", value, field.Kind())
	}
	return nil
}
