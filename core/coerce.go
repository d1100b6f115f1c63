package core

import "reflect"

// Coerce turns a plain Go value into a source Stage, generalizing the
// original's `coercions` dict (xrange/dict/generator/set/tuple/list) to Go's
// type system. Recognized kinds: an existing *Stage (returned as is), a
// Pull (wrapped as a lazy source stage), slices and arrays (reflect, in
// order, as a strict stage), maps (a strict stage yielding
// [2]any{key, value} pairs, iteration order unspecified exactly as Python
// dict iteration order is not a stage-algebra guarantee), channels (received
// from until closed), and generator funcs of shape `func() (any, bool)`
// (value, ok — ok=false signals exhaustion, mirroring the iterator
// protocol's StopIteration). Anything else reports *CannotCoerceError.
func Coerce(name string, x any) (*Stage, error) {
	if s, ok := x.(*Stage); ok {
		return s, nil
	}
	if p, ok := x.(Pull); ok {
		return NewStage(name, StrategyLazy, func(Pull, *FlowRegistry) Pull { return p }), nil
	}
	if gen, ok := x.(func() (any, bool)); ok {
		return coerceGenerator(name, gen), nil
	}

	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return coerceSequence(name, v), nil
	case reflect.Map:
		return coerceMap(name, v), nil
	case reflect.Chan:
		return coerceChan(name, v), nil
	}
	return nil, &CannotCoerceError{Value: x}
}

func coerceGenerator(name string, gen func() (any, bool)) *Stage {
	logic := func(_ Pull, _ *FlowRegistry) Pull {
		return func() (any, error) {
			v, ok := gen()
			if !ok {
				return nil, ErrBlockedUpstream
			}
			return v, nil
		}
	}
	return NewStage(name, StrategyLazy, logic)
}

func coerceSequence(name string, v reflect.Value) *Stage {
	n := v.Len()
	logic := func(_ Pull, _ *FlowRegistry) Pull {
		i := 0
		return func() (any, error) {
			if i >= n {
				return nil, ErrBlockedUpstream
			}
			val := v.Index(i).Interface()
			i++
			return val, nil
		}
	}
	return NewStage(name, StrategyStrict, logic)
}

func coerceMap(name string, v reflect.Value) *Stage {
	logic := func(_ Pull, _ *FlowRegistry) Pull {
		keys := v.MapKeys()
		i := 0
		return func() (any, error) {
			if i >= len(keys) {
				return nil, ErrBlockedUpstream
			}
			k := keys[i]
			val := v.MapIndex(k).Interface()
			i++
			return [2]any{k.Interface(), val}, nil
		}
	}
	return NewStage(name, StrategyStrict, logic)
}

func coerceChan(name string, v reflect.Value) *Stage {
	logic := func(_ Pull, _ *FlowRegistry) Pull {
		return func() (any, error) {
			val, ok := v.Recv()
			if !ok {
				return nil, ErrBlockedUpstream
			}
			return val.Interface(), nil
		}
	}
	return NewStage(name, StrategyLazy, logic)
}
