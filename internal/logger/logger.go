package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Rotator implements zapcore.WriteSyncer and handles log file rotation based on size.
type Rotator struct {
	Filename   string
	MaxSize    int64 // Bytes
	MaxBackups int
	file       *os.File
	size       int64
	mu         sync.Mutex
}

// NewRotator opens (or creates) filename for appending.
func NewRotator(filename string, maxSizeMB int64, maxBackups int) (*Rotator, error) {
	r := &Rotator{
		Filename:   filename,
		MaxSize:    maxSizeMB * 1024 * 1024,
		MaxBackups: maxBackups,
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

// Setup builds a JSON logger writing to stderr and, when filename is set, a rotating file.
// A file that cannot be opened degrades to stderr only.
func Setup(level, filename string, maxSizeMB int64, maxBackups int) *zap.Logger {
	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}

	if filename != "" {
		rotator, err := NewRotator(filename, maxSizeMB, maxBackups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file, using stderr only: %v\n", err)
		} else {
			sinks = append(sinks, rotator)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.NewMultiWriteSyncer(sinks...),
		ParseLevel(level),
	)
	return zap.New(core, zap.AddCaller())
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// open appends to Filename, creating it when missing.
func (r *Rotator) open() error {
	f, err := os.OpenFile(r.Filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	r.file, r.size = f, info.Size()
	return nil
}

// backup names the i-th rotated file, e.g. halal.log.2.
func (r *Rotator) backup(i int) string {
	return fmt.Sprintf("%s.%d", r.Filename, i)
}

// Write appends p, rotating first when p would push the file past MaxSize.
// A failed rotation is reported on stderr and the write goes to whatever
// file is open afterwards.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	if r.MaxSize > 0 && r.size+int64(len(p)) > r.MaxSize {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Log rotation failed: %v\n", err)
		}
		if r.file == nil {
			return 0, fmt.Errorf("log file %s unavailable after rotation", r.Filename)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Sync flushes the current file.
func (r *Rotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// Close closes the current file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate shifts halal.log.N-1 to halal.log.N down to halal.log to halal.log.1,
// dropping the oldest, then reopens Filename. With no backups the file is
// discarded instead. Every failed step is returned; a failed rename leaves
// the current file in place so nothing is lost.
func (r *Rotator) rotate() error {
	var errs []error
	if err := r.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", r.Filename, err))
	}
	r.file = nil

	if r.MaxBackups <= 0 {
		if err := os.Remove(r.Filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	for i := r.MaxBackups; i > 0; i-- {
		src := r.Filename
		if i > 1 {
			src = r.backup(i - 1)
		}
		if err := os.Rename(src, r.backup(i)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	if err := r.open(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
