package openlibrary

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/wolox-training/training-service/training/internal/errs"
	"github.com/wolox-training/training-service/training/internal/model"
)

const separator = ", "

func parseMetadata(isbn string, body []byte) (model.BookMetadata, bool, error) {
	if !jsoniter.ConfigFastest.Valid(body) {
		return model.BookMetadata{}, false, errors.Wrap(errs.ErrFormat, "invalid json")
	}
	root := jsoniter.ConfigFastest.Get(body)
	if root.ValueType() != jsoniter.ObjectValue || len(root.Keys()) == 0 {
		return model.BookMetadata{}, false, nil
	}

	rawPages := findText(root, "number_of_pages")
	pages, err := strconv.Atoi(rawPages)
	if err != nil {
		return model.BookMetadata{}, false, errors.Wrapf(errs.ErrFormat, "number_of_pages %q", rawPages)
	}

	return model.BookMetadata{
		Isbn:          isbn,
		Title:         findText(root, "title"),
		Subtitle:      findText(root, "subtitle"),
		Publishers:    findText(root, "publishers"),
		PublishDate:   findText(root, "publish_date"),
		NumberOfPages: pages,
		Authors:       findText(root, "authors"),
	}, true, nil
}

// findText joins the text of every value stored under key at the shallowest
// depth where key occurs. Absent keys give "".
func findText(root jsoniter.Any, key string) string {
	var parts []string
	for _, v := range findValues(root, key) {
		parts = append(parts, text(v)...)
	}
	return strings.Join(parts, separator)
}

// findValues walks the tree level by level and stops at the first level
// holding key, so nested sections such as table_of_contents never shadow
// the record's own fields.
func findValues(root jsoniter.Any, key string) []jsoniter.Any {
	level := []jsoniter.Any{root}
	for len(level) > 0 {
		var found, next []jsoniter.Any
		for _, node := range level {
			switch node.ValueType() {
			case jsoniter.ObjectValue:
				for _, k := range node.Keys() {
					if k == key {
						found = append(found, node.Get(k))
						continue
					}
					next = append(next, node.Get(k))
				}
			case jsoniter.ArrayValue:
				for i := 0; i < node.Size(); i++ {
					next = append(next, node.Get(i))
				}
			}
		}
		if len(found) > 0 {
			return found
		}
		level = next
	}
	return nil
}

// text renders scalars as-is, objects by their name and arrays element-wise.
func text(v jsoniter.Any) []string {
	switch v.ValueType() {
	case jsoniter.StringValue, jsoniter.NumberValue, jsoniter.BoolValue:
		return []string{v.ToString()}
	case jsoniter.ObjectValue:
		name := v.Get("name")
		if name.ValueType() == jsoniter.StringValue {
			return []string{name.ToString()}
		}
	case jsoniter.ArrayValue:
		var out []string
		for i := 0; i < v.Size(); i++ {
			elem := v.Get(i)
			if elem.ValueType() == jsoniter.ArrayValue {
				continue
			}
			out = append(out, text(elem)...)
		}
		return out
	}
	return nil
}
