package runner

import (
	stderrors "errors"
	"fmt"
	"reflect"

	"github.com/pelletier/go-toml/v2"
)

// Verify decodes before and after and reports whether they hold the same
// data. When before itself does not decode there is nothing to compare
// against and skipped is true.
func Verify(before, after string) (skipped bool, err error) {
	var want map[string]any
	if err := toml.Unmarshal([]byte(before), &want); err != nil {
		return true, nil
	}

	var got map[string]any
	if err := toml.Unmarshal([]byte(after), &got); err != nil {
		return false, fmt.Errorf("sorted output does not decode: %w", err)
	}

	if !reflect.DeepEqual(want, got) {
		return false, stderrors.New("decoded data differs from the input")
	}
	return false, nil
}
