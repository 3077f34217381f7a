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

package statement

import (
	"reflect"

	"github.com/pkg/errors"
)

// AutoKeyGenerator reads back the driver's auto-increment id (JDBC's
// `Statement.getGeneratedKeys()`, surfaced here as driverapi.Result's
// LastInsertId) and assigns it to the first of KeyProperties on the
// parameter object, implementing types.KeyGenerator.
type AutoKeyGenerator struct {
	KeyProperties []string
}

// ProcessBefore implements types.KeyGenerator; auto-increment keys need
// no pre-execution step.
func (AutoKeyGenerator) ProcessBefore(interface{}) error { return nil }

// ProcessAfter implements types.KeyGenerator, assigning generatedKeys[0]
// to the first declared key property.
func (g AutoKeyGenerator) ProcessAfter(param interface{}, generatedKeys []interface{}) error {
	if len(g.KeyProperties) == 0 || len(generatedKeys) == 0 {
		return nil
	}
	return setProperty(param, g.KeyProperties[0], generatedKeys[0])
}

// setProperty assigns value to property on param, which must be a
// pointer to a struct (addressable field) or a map[string]interface{}.
func setProperty(param interface{}, property string, value interface{}) error {
	if m, ok := param.(map[string]interface{}); ok {
		m[property] = value
		return nil
	}
	rv := reflect.ValueOf(param)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Errorf("key property %q requires a pointer parameter object, got %T", property, param)
	}
	fv := rv.Elem().FieldByName(property)
	if !fv.IsValid() || !fv.CanSet() {
		return errors.Errorf("key property %q is not settable on %T", property, param)
	}
	pv := reflect.ValueOf(value)
	if pv.Type().ConvertibleTo(fv.Type()) {
		fv.Set(pv.Convert(fv.Type()))
		return nil
	}
	return errors.Errorf("key value %v (%T) is not assignable to field %q (%s)", value, value, property, fv.Type())
}
