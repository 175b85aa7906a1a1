package rbcbench

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// ExpandAndDecodeFile decodes the yaml file at path into dst after expanding environment
// variables. a missing file leaves dst untouched.
func ExpandAndDecodeFile(path string, dst interface{}) (err error) {
	var (
		raw []byte
	)

	if _, err = os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if raw, err = os.ReadFile(path); err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrapf(ExpandAndDecode(raw, dst), "failed to decode %s", path)
}

// ExpandAndDecode expands environment variables within raw and then decodes it as yaml.
func ExpandAndDecode(raw []byte, dst interface{}) (err error) {
	return ExpandEnvironAndDecode(raw, dst, os.Getenv)
}

// ExpandEnvironAndDecode expands variables using the provided mapping and decodes the result as yaml.
func ExpandEnvironAndDecode(raw []byte, dst interface{}, mapping func(string) string) (err error) {
	return yaml.UnmarshalStrict([]byte(os.Expand(string(raw), mapping)), dst)
}
