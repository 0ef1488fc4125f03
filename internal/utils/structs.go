package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// StructTagValues returns the column names of input in field order.
// Untagged embedded structs are flattened into their parent.
func StructTagValues(input any) []string {
	targetValue := reflect.ValueOf(input)
	if targetValue.Kind() == reflect.Ptr {
		targetValue = targetValue.Elem()
	}

	if targetValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return structColumns(targetValue.Type())
}

func structColumns(targetType reflect.Type) []string {
	result := make([]string, 0, targetType.NumField())

	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)

		tagValue := field.Tag.Get(ColumnTag)
		if field.Anonymous && tagValue == "" && field.Type.Kind() == reflect.Struct {
			result = append(result, structColumns(field.Type)...)
			continue
		}

		if field.PkgPath != "" || tagValue == "" || tagValue == "-" {
			continue
		}

		result = append(result, tagValue)
	}

	return result
}

// StructToMap maps column name to field value, suitable for squirrel SetMap.
func StructToMap(input any) map[string]any {
	itemValue := reflect.ValueOf(input)
	if itemValue.Kind() == reflect.Ptr {
		itemValue = itemValue.Elem()
	}

	if itemValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	result := make(map[string]any)
	structValues(itemValue, result)
	return result
}

func structValues(itemValue reflect.Value, result map[string]any) {
	itemType := itemValue.Type()

	for i := 0; i < itemValue.NumField(); i++ {
		field := itemType.Field(i)

		tagValue := field.Tag.Get(ColumnTag)
		if field.Anonymous && tagValue == "" && field.Type.Kind() == reflect.Struct {
			structValues(itemValue.Field(i), result)
			continue
		}

		if field.PkgPath != "" || tagValue == "" || tagValue == "-" {
			continue
		}

		result[tagValue] = itemValue.Field(i).Interface()
	}
}

const columnPrefixFmt = "%s.%s"

// PrefixColumns qualifies every column with a table alias for joins.
func PrefixColumns(prefix string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = fmt.Sprintf(columnPrefixFmt, prefix, c)
	}
	return out
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
