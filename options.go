package llmrecorder

import (
	"time"

	"github.com/spf13/afero"

	"github.com/manishiitg/llm-recorder-go/interfaces"
	"github.com/manishiitg/llm-recorder-go/internal/logging"
)

// config holds the resolved recorder configuration.
type config struct {
	replayDir     string
	saveDir       string
	replayCount   int
	recording     bool
	persistErrors bool
	logger        interfaces.Logger
	emitter       interfaces.EventEmitter
	fs            afero.Fs
	now           func() time.Time
}

func defaultConfig() config {
	return config{
		replayCount: ReplayAll,
		recording:   true,
		logger:      logging.Nop(),
		fs:          afero.NewOsFs(),
		now:         time.Now,
	}
}

// Option configures a Recorder.
type Option func(*config)

// WithSaveDir sets the directory new interactions are written to. Defaults
// to the replay directory.
func WithSaveDir(dir string) Option {
	return func(c *config) {
		c.saveDir = dir
	}
}

// WithReplayCount caps how many stored interactions are served before
// falling back to live calls. 0 disables replay entirely (recording-only
// mode); the default is ReplayAll.
func WithReplayCount(n int) Option {
	return func(c *config) {
		c.replayCount = n
	}
}

// WithoutRecording disables persistence: calls still replay while stored
// interactions last, but live calls are not written to disk and the save
// directory is left untouched.
func WithoutRecording() Option {
	return func(c *config) {
		c.recording = false
	}
}

// WithPersistErrors also records failed live calls, as tagged error records.
// Replaying an error record yields a ReplayedProviderError.
func WithPersistErrors() Option {
	return func(c *config) {
		c.persistErrors = true
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEventEmitter registers an emitter for recorder lifecycle events.
func WithEventEmitter(emitter interfaces.EventEmitter) Option {
	return func(c *config) {
		c.emitter = emitter
	}
}

// WithFs overrides the filesystem, e.g. afero.NewMemMapFs in tests.
func WithFs(fs afero.Fs) Option {
	return func(c *config) {
		if fs != nil {
			c.fs = fs
		}
	}
}
