package proto

import (
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// fieldDecoder is implemented by types that want to take over decoding of
// their own attribute value instead of the default scalar conversions
// below — the polymorphic-field hook spec.md's deserializer section
// describes for values like an interface's mtu (auto | u16).
type fieldDecoder interface {
	DecodeRouterOSAttr(value string) error
}

// Decode maps a Sentence's attribute words onto the exported fields of dst
// (a pointer to struct), matching each field's `ros:"name"` tag against an
// attribute name. Fields without a tag are ignored. Unknown attributes are
// tolerated unless strict is true.
func Decode(s *Sentence, dst interface{}, strict bool) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New("proto: Decode requires a pointer to struct")
	}
	elem := v.Elem()
	t := elem.Type()

	names := make(map[string]bool, len(s.Attrs))
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("ros")
		if !ok || tag == "-" {
			continue
		}
		value, present := s.Get(tag)
		names[tag] = true
		if !present {
			continue
		}
		if err := setField(elem.Field(i), sf, value); err != nil {
			return errors.Wrapf(err, "proto: field %s (ros:%q)", sf.Name, tag)
		}
	}

	if strict {
		for _, a := range s.Attrs {
			if !names[a.Name] {
				return errors.Errorf("proto: unknown attribute %q", a.Name)
			}
		}
	}
	return nil
}

func setField(fv reflect.Value, sf reflect.StructField, value string) error {
	if fv.CanAddr() {
		if fd, ok := fv.Addr().Interface().(fieldDecoder); ok {
			return fd.DecodeRouterOSAttr(value)
		}
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(value)
		return nil

	case reflect.Bool:
		b, err := ParseBool(value)
		if err != nil {
			return err
		}
		fv.SetBool(b)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
		return nil

	case reflect.Ptr:
		ev := reflect.New(fv.Type().Elem())
		if err := setField(ev.Elem(), sf, value); err != nil {
			return err
		}
		fv.Set(ev)
		return nil

	default:
		return errors.Errorf("proto: unsupported field kind %s", fv.Kind())
	}
}
