package config

import (
	"reflect"
)

// Overlay copies every non-zero field of src onto dst, recursing through the
// config sections. Suite files use it to apply per-report overrides without
// restating the whole configuration.
func Overlay(dst, src *Config) {
	if dst == nil || src == nil {
		return
	}
	overlayValues(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem())
}

func overlayValues(dst, src reflect.Value) {
	if !dst.CanSet() {
		return
	}

	switch dst.Kind() {
	case reflect.Struct:
		for i := 0; i < dst.NumField(); i++ {
			overlayValues(dst.Field(i), src.Field(i))
		}
	case reflect.Slice:
		if src.Len() > 0 {
			dst.Set(src)
		}
	default:
		if !src.IsZero() {
			dst.Set(src)
		}
	}
}
