package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// Columns lists the db-tagged columns of a model type, in field order.
func Columns(model any) []string {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		value = reflect.New(value.Type().Elem()).Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}
	cols, _ := taggedFields(value)
	return cols
}

// InsertModels builds one multi-row INSERT from a slice of db-tagged structs.
func InsertModels[T any](table string, models []T) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert %s: no models", table)
	}

	builder := InsertInto(table)
	for i := range models {
		value := reflect.ValueOf(models[i])
		for value.Kind() == reflect.Pointer {
			if value.IsNil() {
				return "", nil, fmt.Errorf("insert %s: model %d is nil", table, i)
			}
			value = value.Elem()
		}
		if value.Kind() != reflect.Struct {
			return "", nil, fmt.Errorf("insert %s: model must be struct", table)
		}

		cols, vals := taggedFields(value)
		if len(cols) == 0 {
			return "", nil, fmt.Errorf("insert %s: model has no db columns", table)
		}
		if i == 0 {
			builder.Columns(cols...)
		}
		builder.Values(vals...)
	}
	return builder.ToSQL()
}

func taggedFields(value reflect.Value) ([]string, []any) {
	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}
	return cols, vals
}
