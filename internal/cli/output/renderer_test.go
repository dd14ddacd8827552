package output

import (
	"bytes"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTestRenderer(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := map[string]OutputMode{
		"":         ModeAuto,
		"auto":     ModeAuto,
		"text":     ModeText,
		"TEXT":     ModeText,
		"markdown": ModeMarkdown,
		"md":       ModeMarkdown,
		"json":     ModeJSON,
		"yaml":     ModeYAML,
		"xml":      ModeAuto,
	}
	for in, want := range tests {
		assert.Equal(t, want, Mode(in), in)
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{name: "auto on tty", mode: ModeAuto, isTTY: true, want: ModeText},
		{name: "auto piped", mode: ModeAuto, isTTY: false, want: ModeMarkdown},
		{name: "empty piped", mode: "", isTTY: false, want: ModeMarkdown},
		{name: "explicit text piped", mode: ModeText, isTTY: false, want: ModeText},
		{name: "json on tty", mode: ModeJSON, isTTY: true, want: ModeJSON},
		{name: "yaml", mode: ModeYAML, isTTY: false, want: ModeYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
			assert.Equal(t, tt.isTTY, r.IsTTY())
		})
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown, false)

	r.Header(1, "Shaders")
	r.KeyValue("System", "2")
	r.Table([]string{"Name", "Path"}, [][]string{{"Pixellate", "/s/Pixellate/p.slangp"}})

	s := out.String()
	assert.Contains(t, s, "# Shaders")
	assert.Contains(t, s, "- **System**: 2")
	assert.Contains(t, s, "| Name | Path |")
	assert.Contains(t, s, "| Pixellate | /s/Pixellate/p.slangp |")
	assert.False(t, ansiPattern.MatchString(s))
}

func TestRenderer_TextWithoutTTYHasNoANSI(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false)

	r.Header(2, "Custom")
	r.KeyValue("Active", "CRT")
	r.Success("saved")
	r.Warning("careful")
	r.Table([]string{"Name"}, [][]string{{"CRT"}})

	assert.Contains(t, out.String(), "Custom")
	assert.Contains(t, out.String(), "Active: CRT")
	assert.Contains(t, out.String(), "saved")
	assert.Contains(t, out.String(), "CRT")
	assert.Contains(t, errOut.String(), "warning: careful")
	assert.False(t, ansiPattern.MatchString(out.String()+errOut.String()))
}

func TestRenderer_Structured(t *testing.T) {
	type payload struct {
		Name string `json:"name" yaml:"name"`
	}

	t.Run("json", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeJSON, false)
		ok, err := r.Structured(payload{Name: "Pixellate"})
		require.NoError(t, err)
		assert.True(t, ok)

		var got payload
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "Pixellate", got.Name)
	})

	t.Run("yaml", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeYAML, false)
		ok, err := r.Structured(payload{Name: "Pixellate"})
		require.NoError(t, err)
		assert.True(t, ok)

		var got payload
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "Pixellate", got.Name)
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText, false)
		ok, err := r.Structured(payload{})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, out.String())
	})
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "# Zero", FormatHeader(0, "Zero"))
	assert.Equal(t, "- **k**: v", FormatKeyValue("k", "v"))
}
