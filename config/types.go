package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Offset is a signed integer that accepts hex ("0xDFB8A38", "-0x10") as
// well as decimal, and is written back in hex.
type Offset int64

func (o *Offset) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: offset must be a scalar", node.Line)
	}

	v, err := strconv.ParseInt(node.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: bad offset %q: %w", node.Line, node.Value, err)
	}

	*o = Offset(v)
	return nil
}

func (o Offset) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int"}
	if o < 0 {
		node.Value = fmt.Sprintf("-0x%X", -int64(o))
	} else {
		node.Value = fmt.Sprintf("0x%X", int64(o))
	}
	return node, nil
}

// Duration accepts Go duration strings ("50ms", "1s") or a bare integer
// number of milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}

	if ms, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: bad duration %q: %w", node.Line, node.Value, err)
	}

	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
