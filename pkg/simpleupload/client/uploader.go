package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/objectkey"
)

// DefaultResetDelay is how long a finished upload keeps its progress before returning to idle
const DefaultResetDelay = 2 * time.Second

var (
	// ErrNoFile is returned when Select is called without a file
	ErrNoFile = errors.New("no file selected")

	// ErrUploadInProgress is returned when Select is called while an upload is running
	ErrUploadInProgress = errors.New("upload already in progress")
)

// State is the uploader's position in the upload flow
type State string

const (
	StateIdle          State = "idle"
	StateValidating    State = "validating"
	StateRequestingURL State = "requesting-url"
	StateTransferring  State = "transferring"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// Status is a snapshot reported to the observer on every change
type Status struct {
	State    State
	Progress int
	File     string
	Err      error
	Record   *simpleupload.UploadedFileRecord
}

// Observer is notified after every state or progress change
type Observer func(Status)

// UploadPresigner issues upload URLs
type UploadPresigner interface {
	PresignUpload(ctx context.Context, req simpleupload.UploadRequest) (*simpleupload.PresignedURL, error)
}

// Putter transfers bytes to a presigned URL
type Putter interface {
	Put(ctx context.Context, presignedURL string, body io.Reader, size int64, contentType string, progress ProgressFunc) error
}

// Uploader drives one upload at a time through
// idle → validating → requesting-url → transferring → done | failed.
type Uploader struct {
	presigner UploadPresigner
	transfer  Putter
	files     *FileList
	keys      objectkey.Generator
	rules     simpleupload.Rules
	observer  Observer
	delay     time.Duration
	now       func() time.Time

	mu         sync.Mutex
	status     Status
	lastErr    error
	busy       bool
	gen        uint64 // bumped by each Select; stale resets compare against it
	resetTimer *time.Timer
}

// UploaderOption is a functional option for configuring an Uploader
type UploaderOption func(*Uploader)

// WithObserver registers a callback for status changes
func WithObserver(observer Observer) UploaderOption {
	return func(u *Uploader) {
		u.observer = observer
	}
}

// WithResetDelay sets how long progress is kept after an upload finishes
func WithResetDelay(delay time.Duration) UploaderOption {
	return func(u *Uploader) {
		u.delay = delay
	}
}

// WithKeyGenerator replaces the object key generator
func WithKeyGenerator(gen objectkey.Generator) UploaderOption {
	return func(u *Uploader) {
		u.keys = gen
	}
}

// WithRules replaces the rules used for local checks
func WithRules(rules simpleupload.Rules) UploaderOption {
	return func(u *Uploader) {
		u.rules = rules
	}
}

func NewUploader(presigner UploadPresigner, transfer Putter, files *FileList, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		presigner: presigner,
		transfer:  transfer,
		files:     files,
		keys:      objectkey.NewTimestampGenerator(),
		rules:     simpleupload.DefaultRules(),
		delay:     DefaultResetDelay,
		now:       time.Now,
		status:    Status{State: StateIdle},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Status returns the current status
func (u *Uploader) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// Err returns the error of the most recent failed upload, if any
func (u *Uploader) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastErr
}

// Busy reports whether an upload is running
func (u *Uploader) Busy() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.busy
}

// Select uploads the first of files and blocks until it is done or failed.
func (u *Uploader) Select(ctx context.Context, files ...File) error {
	if len(files) == 0 {
		return ErrNoFile
	}
	file := files[0]

	u.mu.Lock()
	if u.busy {
		u.mu.Unlock()
		return ErrUploadInProgress
	}
	u.busy = true
	u.gen++
	u.lastErr = nil
	if u.resetTimer != nil {
		u.resetTimer.Stop()
		u.resetTimer = nil
	}
	u.mu.Unlock()

	record, err := u.run(ctx, file)

	u.mu.Lock()
	u.busy = false
	u.lastErr = err
	u.mu.Unlock()

	if err != nil {
		u.set(Status{State: StateFailed, File: file.Name, Err: err})
	} else {
		u.set(Status{State: StateDone, Progress: 100, File: file.Name, Record: record})
	}
	u.scheduleReset()

	return err
}

func (u *Uploader) run(ctx context.Context, file File) (*simpleupload.UploadedFileRecord, error) {
	u.set(Status{State: StateValidating, File: file.Name})
	if err := u.checkFile(file); err != nil {
		return nil, err
	}

	key := u.keys.GenerateKey(file.Name)

	u.set(Status{State: StateRequestingURL, File: file.Name})
	presigned, err := u.presigner.PresignUpload(ctx, simpleupload.UploadRequest{
		Key:           key,
		ContentType:   file.Type,
		ContentLength: file.Size,
	})
	if err != nil {
		return nil, err
	}

	body, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer body.Close()

	u.set(Status{State: StateTransferring, File: file.Name})
	err = u.transfer.Put(ctx, presigned.URL, body, file.Size, file.Type, func(percent int) {
		u.set(Status{State: StateTransferring, Progress: percent, File: file.Name})
	})
	if err != nil {
		return nil, err
	}

	record := simpleupload.UploadedFileRecord{
		Key:        key,
		Name:       file.Name,
		Size:       file.Size,
		Type:       file.Type,
		UploadedAt: u.now(),
	}
	if u.files != nil {
		u.files.Add(record)
	}
	return &record, nil
}

// checkFile mirrors the server's size and type limits so obvious rejections
// never reach the network.
func (u *Uploader) checkFile(file File) error {
	if file.Size > u.rules.MaxBytes {
		return fmt.Errorf("File size must be less than %s", sizeLimit(u.rules.MaxBytes))
	}
	if err := u.rules.CheckContentType(file.Type); err != nil {
		return fmt.Errorf("File type %s is not allowed", file.Type)
	}
	return nil
}

func (u *Uploader) set(status Status) {
	u.mu.Lock()
	u.status = status
	observer := u.observer
	u.mu.Unlock()

	if observer != nil {
		observer(status)
	}
}

func (u *Uploader) scheduleReset() {
	u.mu.Lock()
	gen := u.gen
	u.mu.Unlock()

	if u.delay <= 0 {
		u.reset(gen)
		return
	}

	u.mu.Lock()
	u.resetTimer = time.AfterFunc(u.delay, func() { u.reset(gen) })
	u.mu.Unlock()
}

// reset returns to idle unless an upload has started since gen.
// The check and the write happen under one lock hold.
func (u *Uploader) reset(gen uint64) bool {
	u.mu.Lock()
	if u.busy || u.gen != gen {
		u.mu.Unlock()
		return false
	}
	status := Status{State: StateIdle}
	u.status = status
	observer := u.observer
	u.mu.Unlock()

	if observer != nil {
		observer(status)
	}
	return true
}

func sizeLimit(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return FormatFileSize(n)
}
