package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"gopkg.in/yaml.v3"
)

const scriptTimeout = 5 * time.Second

// scriptKeys are the globals read back from a config script, one per
// top-level YAML key.
var scriptKeys = func() []string {
	t := reflect.TypeOf(Spec{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}()

// RunScript executes a tengo config script and decodes its globals through
// the YAML schema. The script sees config_dir, the directory it was loaded
// from, and every tengo stdlib module.
func RunScript(src []byte, dir string) (Spec, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("config_dir", dir); err != nil {
		return Spec{}, err
	}

	compiled, err := script.Compile()
	if err != nil {
		return Spec{}, fmt.Errorf("compile: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()
	if err := compiled.RunContext(ctx); err != nil {
		return Spec{}, fmt.Errorf("run: %w", err)
	}

	values := make(map[string]any, len(scriptKeys))
	for _, key := range scriptKeys {
		if !compiled.IsDefined(key) {
			continue
		}
		v := compiled.Get(key).Value()
		if v == nil {
			continue
		}
		values[key] = v
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return Spec{}, fmt.Errorf("encode globals: %w", err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("decode globals: %w", err)
	}
	return spec, nil
}
