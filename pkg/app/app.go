// Package app wires the classifier, the scan history and the scan session
// to a user interface. Every user action maps to one method; the UI supplies
// a Notifier for transient messages and a Display for results.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/xerrors"

	"easyfilter/pkg/catalog"
	"easyfilter/pkg/decode"
	"easyfilter/pkg/hardware"
	"easyfilter/pkg/history"
	"easyfilter/pkg/log"
	"easyfilter/pkg/metrics"
	"easyfilter/pkg/session"
)

var (
	// ErrClipboardUnavailable means copying to the clipboard failed.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	// ErrEmptyInput is returned by SearchManual for blank input.
	ErrEmptyInput = errors.New("no barcode entered")
)

// User-facing messages.
const (
	MsgCameraOn      = "카메라가 활성화되었습니다. 바코드를 프레임 안에 맞춰주세요."
	MsgCameraError   = "카메라에 접근할 수 없습니다. 카메라 권한을 확인해주세요."
	MsgScanStopped   = "스캔이 중지되었습니다."
	MsgInvalidScan   = "유효하지 않은 바코드입니다. 다시 시도해주세요."
	MsgScanned       = "바코드 %s가 성공적으로 스캔되어 자동 검색되었습니다."
	MsgEnterBarcode  = "바코드 번호를 입력해주세요."
	MsgInvalidManual = "유효한 바코드 번호를 입력해주세요. (최소 8자리)"
	MsgCopied        = "바코드 번호가 클립보드에 복사되었습니다."
	MsgCopyFailed    = "클립보드 복사에 실패했습니다."
)

// MessageTTL is how long a UI should keep a message on screen.
const MessageTTL = 3 * time.Second

// Level of a message.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Message is a transient notification. Each message replaces the previous one.
type Message struct {
	Text  string
	Level Level
}

// Notifier shows messages.
type Notifier interface {
	Notify(msg Message)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg Message)

func (f NotifierFunc) Notify(msg Message) { f(msg) }

// Display shows a classification result.
type Display interface {
	ShowResult(res *catalog.Classification)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(res *catalog.Classification)

func (f DisplayFunc) ShowResult(res *catalog.Classification) { f(res) }

// Clipboard copies text for the user.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Deps are the collaborators of an App. Catalog defaults to catalog.Default.
type Deps struct {
	Catalog   *catalog.Catalog
	History   *history.Store
	Camera    hardware.Camera
	Decoder   decode.Decoder
	Notifier  Notifier
	Display   Display
	Clipboard Clipboard
	Recorder  *metrics.Recorder

	FrameInterval time.Duration
}

// App is one scanner instance. UIs hold a pointer to it and call its
// methods from their event handlers.
type App struct {
	catalog   *catalog.Catalog
	history   *history.Store
	scanner   *session.Controller
	notifier  Notifier
	display   Display
	clipboard Clipboard

	mu      sync.Mutex
	current string
}

// New creates an App. History must be loaded by the caller.
func New(d Deps) *App {
	a := &App{
		catalog:   d.Catalog,
		history:   d.History,
		notifier:  d.Notifier,
		display:   d.Display,
		clipboard: d.Clipboard,
	}
	if a.catalog == nil {
		a.catalog = catalog.Default
	}
	a.scanner = session.New(d.Camera, d.Decoder,
		session.WithInterval(d.FrameInterval),
		session.WithRecorder(d.Recorder),
		session.WithRejectHandler(func(raw string, err error) {
			a.notify(LevelError, MsgInvalidScan)
		}),
	)
	return a
}

func (a *App) notify(level Level, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	if a.notifier != nil {
		a.notifier.Notify(Message{Text: text, Level: level})
	}
}

// Current returns the barcode on display, or "".
func (a *App) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Scanning reports whether the camera is running.
func (a *App) Scanning() bool {
	return a.scanner.State() == session.Scanning
}

// StartScan turns the camera on.
func (a *App) StartScan(ctx context.Context) error {
	if err := a.scanner.Start(ctx); err != nil {
		if errors.Is(err, session.ErrAlreadyScanning) || errors.Is(err, session.ErrStopped) {
			return err
		}
		log.Error("Camera access failed: %v", err)
		a.notify(LevelError, MsgCameraError)
		return err
	}
	a.notify(LevelSuccess, MsgCameraOn)
	return nil
}

// StopScan turns the camera off.
func (a *App) StopScan() {
	a.scanner.Stop()
	a.notify(LevelSuccess, MsgScanStopped)
}

// RunScan waits for the running scan to find a barcode and processes it.
// It returns session.ErrStopped if StopScan was called first.
func (a *App) RunScan(ctx context.Context) (*catalog.Classification, error) {
	code, err := a.scanner.Run(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrStopped) {
			log.Error("Scan ended: %v", err)
		}
		return nil, err
	}
	return a.ProcessBarcode(ctx, code)
}

// Scan is StartScan followed by RunScan.
func (a *App) Scan(ctx context.Context) (*catalog.Classification, error) {
	if err := a.StartScan(ctx); err != nil {
		return nil, err
	}
	return a.RunScan(ctx)
}

// ProcessBarcode handles a decoded barcode: it stops the camera, shows the
// result and records the scan.
func (a *App) ProcessBarcode(ctx context.Context, raw string) (*catalog.Classification, error) {
	if _, err := catalog.Normalize(raw); err != nil {
		a.notify(LevelError, MsgInvalidScan)
		return nil, err
	}
	a.scanner.Stop()

	res, err := a.show(raw)
	if err != nil {
		return nil, err
	}
	a.record(ctx, res.Barcode)
	a.notify(LevelSuccess, MsgScanned, res.Barcode)
	return res, nil
}

// SearchManual looks up a typed barcode.
func (a *App) SearchManual(ctx context.Context, input string) (*catalog.Classification, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		a.notify(LevelError, MsgEnterBarcode)
		return nil, ErrEmptyInput
	}
	res, err := a.show(input)
	if err != nil {
		a.notify(LevelError, MsgInvalidManual)
		return nil, err
	}
	a.record(ctx, res.Barcode)
	return res, nil
}

// SelectRecent shows a barcode from the history without changing the history.
func (a *App) SelectRecent(barcode string) (*catalog.Classification, error) {
	res, err := a.show(barcode)
	if err != nil {
		a.notify(LevelError, MsgInvalidScan)
		return nil, err
	}
	return res, nil
}

// CopyBarcode puts the barcode on display on the clipboard.
func (a *App) CopyBarcode(ctx context.Context) error {
	code := a.Current()
	var err error
	switch {
	case a.clipboard == nil:
		err = errors.New("no clipboard configured")
	case code == "":
		err = errors.New("no barcode on display")
	default:
		err = a.clipboard.WriteText(ctx, code)
	}
	if err != nil {
		log.Debug("Copy failed: %v", err)
		a.notify(LevelError, MsgCopyFailed)
		return xerrors.Errorf("%v: %w", err, ErrClipboardUnavailable)
	}
	a.notify(LevelSuccess, MsgCopied)
	return nil
}

// History returns the recent scans, newest first.
func (a *App) History() []history.ScanRecord {
	return a.history.Records()
}

// show classifies raw and hands the result to the display.
func (a *App) show(raw string) (*catalog.Classification, error) {
	res, err := a.catalog.Classify(raw)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.current = res.Barcode
	a.mu.Unlock()
	if a.display != nil {
		a.display.ShowResult(res)
	}
	return res, nil
}

// record adds a scan to the history. Persistence failures are logged only.
func (a *App) record(ctx context.Context, barcode string) {
	if _, err := a.history.Record(ctx, barcode); err != nil {
		log.Warn("Could not save scan history: %v", err)
	}
}
