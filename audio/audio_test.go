// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/ik5/audmix/internal/audiotest"
)

type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (Source, error) {
	return audiotest.NewSilentSource(44100, 2, 100), nil
}

type failingDecoder struct{}

func (failingDecoder) Decode(r io.Reader) (Source, error) {
	return nil, errors.New("decode failed")
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavDecoder := &mockDecoder{name: "wav"}
	oggDecoder := &mockDecoder{name: "ogg"}
	registry.Register("wav", wavDecoder)
	registry.Register(".OGG", oggDecoder)

	tests := []struct {
		format string
		want   Decoder
		wantOK bool
	}{
		{"wav", wavDecoder, true},
		{".wav", wavDecoder, true},
		{"WAV", wavDecoder, true},
		{"ogg", oggDecoder, true},
		{"flac", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, ok := registry.Get(tt.format)
			if ok != tt.wantOK {
				t.Errorf("Get(%q) ok = %v, want %v", tt.format, ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("Get(%q) returned wrong decoder", tt.format)
			}
		})
	}
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	d := &mockDecoder{name: "mp3"}
	registry.Register("mp3", d)

	if got, ok := registry.ForPath("music/theme.MP3"); !ok || got != d {
		t.Errorf("ForPath() = (%v, %v), want mp3 decoder", got, ok)
	}
	if _, ok := registry.ForPath("music/theme"); ok {
		t.Error("ForPath() without extension should miss")
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	second := &mockDecoder{name: "second"}
	registry.Register("wav", &mockDecoder{name: "first"})
	registry.Register("wav", second)

	if got, _ := registry.Get("wav"); got != second {
		t.Error("Get() did not return the overwritten decoder")
	}

	registry.Register("bad", failingDecoder{})
	formats := registry.Formats()
	sort.Strings(formats)
	if len(formats) != 2 || formats[0] != "bad" || formats[1] != "wav" {
		t.Errorf("Formats() = %v, want [bad wav]", formats)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "test"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Register("format", decoder)
		}()
		go func() {
			defer wg.Done()
			_, _ = registry.Get("format")
		}()
	}
	wg.Wait()

	if got, ok := registry.Get("format"); !ok || got != decoder {
		t.Error("Registry returned wrong decoder after concurrent operations")
	}
}
