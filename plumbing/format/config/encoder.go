package config

import (
	"fmt"
	"io"
	"strings"
)

// An Encoder writes a Config back out in Git's textual config-file format.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes cfg's sections, subsections and options in order.
func (e *Encoder) Encode(cfg *Config) error {
	for _, s := range cfg.Sections {
		if err := e.encodeSection(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeSection(s *Section) error {
	if len(s.Options) > 0 || len(s.Subsections) == 0 {
		if _, err := fmt.Fprintf(e.w, "[%s]\n", s.Name); err != nil {
			return err
		}
		if err := e.encodeOptions(s.Options); err != nil {
			return err
		}
	}
	for _, ss := range s.Subsections {
		if _, err := fmt.Fprintf(e.w, "[%s %q]\n", s.Name, ss.Name); err != nil {
			return err
		}
		if err := e.encodeOptions(ss.Options); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeOptions(opts Options) error {
	for _, o := range opts {
		value := o.Value
		if strings.ContainsAny(value, "\"\\") {
			value = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
		}
		if _, err := fmt.Fprintf(e.w, "\t%s = %s\n", o.Key, value); err != nil {
			return err
		}
	}
	return nil
}
