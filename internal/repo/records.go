package repo

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"worksim/internal/domain"
)

type column struct {
	name  string
	index []int
	date  bool
}

var layouts sync.Map // reflect.Type -> []column

// layout lists the db-tagged fields of t, descending into embedded structs.
func layout(t reflect.Type) []column {
	if cached, ok := layouts.Load(t); ok {
		return cached.([]column)
	}
	var cols []column
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			index := append(append([]int{}, prefix...), i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, index)
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			name, opt, _ := strings.Cut(tag, ",")
			cols = append(cols, column{name: name, index: index, date: opt == "date"})
		}
	}
	walk(t, nil)
	layouts.Store(t, cols)
	return cols
}

// Encode turns a slice of records into column names and row values ready for
// Append. Times become text, nil pointers become NULL.
func Encode(records any) ([]string, [][]any, error) {
	v := reflect.ValueOf(records)
	if v.Kind() != reflect.Slice || v.Type().Elem().Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("encode: want a slice of structs, got %T", records)
	}
	cols := layout(v.Type().Elem())
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	rows := make([][]any, v.Len())
	for i := range rows {
		rec := v.Index(i)
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = sqlValue(rec.FieldByIndex(c.index), c.date)
		}
		rows[i] = row
	}
	return names, rows, nil
}

func sqlValue(v reflect.Value, date bool) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch x := v.Interface().(type) {
	case time.Time:
		if date {
			return x.Format(domain.DateLayout)
		}
		return x.Format(domain.TimestampLayout)
	case int:
		return int64(x)
	default:
		return x
	}
}
