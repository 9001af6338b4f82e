package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framereader/pkg/config"
	"github.com/user/framereader/pkg/mocks"
	"github.com/user/framereader/pkg/reader"
)

type owner struct{ name string }

func newRegistry(media *mocks.Media) *Registry {
	caps := config.DefaultCapabilities()
	caps.AllowedCodecs[mocks.FakeCodecName] = true
	deps := reader.Deps{Demuxer: media, Codecs: media, Logger: mocks.NewLogger()}
	return New(func(filename string) *reader.File {
		return reader.Open(filename, deps, caps)
	})
}

func TestGetOrCreate_ReusesHandle(t *testing.T) {
	media := mocks.NewMedia(mocks.MediaConfig{Frames: 5, ReportStartTime: true})
	reg := newRegistry(media)
	defer reg.Close()
	a := &owner{"a"}

	first := reg.GetOrCreate(a, "clip.mov")
	second := reg.GetOrCreate(a, "clip.mov")
	assert.Same(t, first, second)
	assert.Len(t, media.Opens(), 1)
	assert.Equal(t, 1, reg.Len(a))

	reg.Clear(a)
	assert.Equal(t, 0, reg.Len(a))
	assert.True(t, media.Containers()[0].Closed())

	third := reg.GetOrCreate(a, "clip.mov")
	assert.NotSame(t, first, third)
	assert.Len(t, media.Opens(), 2)
}

func TestGetOrCreate_SeparatesOwnersAndFiles(t *testing.T) {
	media := mocks.NewMedia(mocks.MediaConfig{Frames: 5, ReportStartTime: true})
	reg := newRegistry(media)
	defer reg.Close()
	a, b := &owner{"a"}, &owner{"b"}

	fa := reg.GetOrCreate(a, "clip.mov")
	fb := reg.GetOrCreate(b, "clip.mov")
	fa2 := reg.GetOrCreate(a, "other.mov")
	assert.NotSame(t, fa, fb)
	assert.NotSame(t, fa, fa2)
	assert.Equal(t, 2, reg.Len(a))
	assert.Equal(t, 1, reg.Len(b))

	reg.Clear(a)
	assert.Equal(t, 1, reg.Len(b))
	assert.Same(t, fb, reg.GetOrCreate(b, "clip.mov"))
}

func TestGetOrCreate_ReplacesInvalidHandle(t *testing.T) {
	media := mocks.NewMedia(mocks.MediaConfig{NoVideo: true})
	reg := newRegistry(media)
	defer reg.Close()
	a := &owner{"a"}

	bad := reg.GetOrCreate(a, "clip.mov")
	require.True(t, bad.Invalid())
	assert.Equal(t, 1, reg.Len(a))

	again := reg.GetOrCreate(a, "clip.mov")
	assert.NotSame(t, bad, again)
	assert.Equal(t, 1, reg.Len(a), "invalid handle must be removed, not accumulated")
	assert.Len(t, media.Opens(), 2)
}

func TestRegistry_ConcurrentDecodes(t *testing.T) {
	media := mocks.NewMedia(mocks.MediaConfig{Frames: 20, GOP: 5, Latency: 1, ReportStartTime: true})
	reg := newRegistry(media)
	defer reg.Close()
	a := &owner{"a"}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for n := 1 + offset; n <= 20; n += 4 {
				f := reg.GetOrCreate(a, "clip.mov")
				buf, err := f.Decode(context.Background(), n, reader.DecodeOptions{MaxRetries: 3})
				if assert.NoError(t, err) {
					assert.Equal(t, n, mocks.Tag(buf.Pix))
				}
			}
		}(w)
	}
	wg.Wait()
	assert.Len(t, media.Opens(), 1)
}

func TestGetOrCreate_DoesNotWaitForDecode(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	media := mocks.NewMedia(mocks.MediaConfig{
		Frames:          5,
		ReportStartTime: true,
		SendHook: func(int) {
			once.Do(func() {
				close(started)
				<-release
			})
		},
	})
	reg := newRegistry(media)
	defer reg.Close()
	a, b := &owner{"a"}, &owner{"b"}

	f := reg.GetOrCreate(a, "clip.mov")
	decoded := make(chan error, 1)
	go func() {
		_, err := f.Decode(context.Background(), 1, reader.DecodeOptions{})
		decoded <- err
	}()
	<-started

	looked := make(chan struct{})
	go func() {
		defer close(looked)
		assert.Same(t, f, reg.GetOrCreate(a, "clip.mov"))
		assert.Equal(t, 0, reg.Len(b))
	}()

	select {
	case <-looked:
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("registry lookups waited for a decode in progress")
	}

	close(release)
	require.NoError(t, <-decoded)
}

func TestRegistry_Close(t *testing.T) {
	media := mocks.NewMedia(mocks.MediaConfig{Frames: 5, ReportStartTime: true})
	reg := newRegistry(media)
	reg.GetOrCreate(&owner{"a"}, "one.mov")
	reg.GetOrCreate(&owner{"b"}, "two.mov")

	reg.Close()
	for _, c := range media.Containers() {
		assert.True(t, c.Closed())
	}
}
