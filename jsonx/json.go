package jsonx

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var jsonx = jsoniter.ConfigCompatibleWithStandardLibrary

func Marshal(v interface{}) ([]byte, error) {
	return jsonx.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return jsonx.Unmarshal(data, v)
}

// WriteIndented renders v for humans (printchain --json): one indented
// document followed by a newline.
func WriteIndented(w io.Writer, v interface{}) error {
	enc := jsonx.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
