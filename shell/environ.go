package shell

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/subosito/gotenv"
)

// EnvironFromFile loads an environment from a file, a missing file is an empty environment.
func EnvironFromFile(path string) (environ []string, err error) {
	var (
		src *os.File
	)

	if path == "" {
		return environ, nil
	}

	if src, err = os.Open(path); err != nil {
		if os.IsNotExist(err) {
			return environ, nil
		}
		return environ, errors.WithStack(err)
	}
	defer src.Close()

	return EnvironFromReader(src)
}

// EnvironFromReader loads an environment from a reader.
func EnvironFromReader(r io.Reader) (environ []string, err error) {
	var (
		ir gotenv.Env
	)

	if ir, err = gotenv.StrictParse(r); err != nil {
		return environ, errors.Wrap(err, "failed to parse environment")
	}

	environ = make([]string, 0, len(ir))
	for k, v := range ir {
		if strings.ContainsAny(v, " \n\t") {
			environ = append(environ, k+"=\""+v+"\"")
		} else {
			environ = append(environ, k+"="+v)
		}
	}

	// map iteration order is random, keep the rendered commands stable.
	sort.Strings(environ)

	return environ, nil
}
