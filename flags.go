package lcfiplot

import (
	"strings"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*StringListFlags)(nil)

// StringListFlags is a repeatable flag. The first Set replaces the
// defaults, later ones append; comma-separated values are split.
type StringListFlags struct {
	List    []string
	beenSet bool
}

func (f *StringListFlags) Set(valueStr string) error {
	if !f.beenSet {
		f.beenSet = true
		f.List = nil
	}

	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			f.List = append(f.List, v)
		}
	}
	return nil
}

func (f *StringListFlags) String() string {
	return strings.Join(f.List, ",")
}

func (f *StringListFlags) Type() string { return "strings" }

// Changed reports whether Set was called.
func (f *StringListFlags) Changed() bool { return f.beenSet }
