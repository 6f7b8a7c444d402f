package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"easyfilter/pkg/app"
	"easyfilter/pkg/catalog"
	"easyfilter/pkg/config"
	"easyfilter/pkg/history"
	"easyfilter/pkg/log"
	"easyfilter/pkg/render"
	"easyfilter/pkg/session"
)

const helpLine = "F2 스캔  Esc 중지  Enter 검색/선택  Tab 입력↔기록  ^Y 복사  ^Q 종료"

type focus int

const (
	focusInput focus = iota
	focusRecent
)

// tui is the interactive front end. It implements app.Notifier, app.Display
// and history.Renderer; those may be called from the scan goroutine, so
// every field below mu is guarded by it.
type tui struct {
	ctx  context.Context
	app  *app.App
	wake func()
	ttl  time.Duration

	mu       sync.Mutex
	input    []rune
	focus    focus
	selected int
	result   []string
	recent   []history.ScanRecord
	msg      *app.Message
	msgSeq   int
}

func newTUI(ctx context.Context, wake func()) *tui {
	return &tui{ctx: ctx, wake: wake, ttl: app.MessageTTL}
}

// Notify shows m until the next message or until the TTL passes.
func (t *tui) Notify(m app.Message) {
	t.mu.Lock()
	t.msgSeq++
	seq := t.msgSeq
	t.msg = &m
	t.mu.Unlock()

	time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		if t.msgSeq == seq {
			t.msg = nil
		}
		t.mu.Unlock()
		t.wake()
	})
	t.wake()
}

func (t *tui) ShowResult(res *catalog.Classification) {
	t.mu.Lock()
	t.result = render.Lines(res)
	t.mu.Unlock()
	t.wake()
}

func (t *tui) RenderHistory(records []history.ScanRecord) {
	t.mu.Lock()
	t.recent = records
	if t.selected >= len(records) {
		t.selected = max(len(records)-1, 0)
	}
	t.mu.Unlock()
	t.wake()
}

// message returns the message on screen, if any.
func (t *tui) message() (app.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.msg == nil {
		return app.Message{}, false
	}
	return *t.msg, true
}

// handleKey applies one key press and reports whether the user asked to quit.
// App calls happen without holding mu since they call back into t.
func (t *tui) handleKey(ev termbox.Event) bool {
	switch ev.Key {
	case termbox.KeyCtrlC, termbox.KeyCtrlQ:
		return true
	case termbox.KeyF2, termbox.KeyCtrlS:
		t.startScan()
	case termbox.KeyEsc:
		if t.app.Scanning() {
			t.app.StopScan()
		}
	case termbox.KeyCtrlY:
		_ = t.app.CopyBarcode(t.ctx)
	case termbox.KeyTab:
		t.mu.Lock()
		if t.focus == focusInput && len(t.recent) > 0 {
			t.focus = focusRecent
		} else {
			t.focus = focusInput
		}
		t.mu.Unlock()
	case termbox.KeyArrowUp, termbox.KeyArrowDown:
		t.mu.Lock()
		if t.focus == focusRecent {
			if ev.Key == termbox.KeyArrowUp && t.selected > 0 {
				t.selected--
			}
			if ev.Key == termbox.KeyArrowDown && t.selected < len(t.recent)-1 {
				t.selected++
			}
		}
		t.mu.Unlock()
	case termbox.KeyEnter:
		t.submit()
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		t.mu.Lock()
		if t.focus == focusInput && len(t.input) > 0 {
			t.input = t.input[:len(t.input)-1]
		}
		t.mu.Unlock()
	case termbox.KeySpace:
		t.typeRune(' ')
	default:
		if ev.Ch != 0 {
			t.typeRune(ev.Ch)
		}
	}
	return false
}

func (t *tui) typeRune(r rune) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.focus == focusInput {
		t.input = append(t.input, r)
	}
}

// submit searches the typed barcode or shows the selected recent scan.
func (t *tui) submit() {
	t.mu.Lock()
	f, input := t.focus, string(t.input)
	var selected string
	if f == focusRecent && t.selected < len(t.recent) {
		selected = t.recent[t.selected].Barcode
	}
	t.mu.Unlock()

	if f == focusRecent {
		if selected != "" {
			_, _ = t.app.SelectRecent(selected)
		}
		return
	}
	_, _ = t.app.SearchManual(t.ctx, input)
}

// startScan runs one scan in the background. The app reports the outcome
// through Notify and ShowResult.
func (t *tui) startScan() {
	go func() {
		if err := t.app.StartScan(t.ctx); err != nil {
			return
		}
		t.wake()
		if _, err := t.app.RunScan(t.ctx); err != nil && !errors.Is(err, session.ErrStopped) {
			log.Debug("Scan ended without a result: %v", err)
		}
		t.wake()
	}()
}

// --- Drawing ---

func printAt(x, y int, fg, bg termbox.Attribute, s string) int {
	for _, r := range s {
		termbox.SetCell(x, y, r, fg, bg)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func (t *tui) draw() {
	const def = termbox.ColorDefault
	termbox.Clear(def, def)
	width, height := termbox.Size()

	msg, hasMsg := t.message()
	scanning := t.app.Scanning()

	t.mu.Lock()
	input, f, selected := string(t.input), t.focus, t.selected
	result := append([]string(nil), t.result...)
	recent := render.HistoryLines(t.recent)
	hasRecent := len(t.recent) > 0
	t.mu.Unlock()

	printAt(0, 0, def|termbox.AttrBold, def, "EasyFilter 바코드 스캐너")
	status, statusFg := "[대기]", def
	if scanning {
		status, statusFg = "[스캔 중]", termbox.ColorYellow|termbox.AttrBold
	}
	printAt(max(width-runewidth.StringWidth(status), 0), 0, statusFg, def, status)

	x := printAt(0, 2, def, def, "바코드 입력: ")
	end := printAt(x, 2, def, def, input)
	if f == focusInput {
		termbox.SetCursor(end, 2)
	} else {
		termbox.HideCursor()
	}

	if hasMsg {
		fg := termbox.ColorGreen
		if msg.Level == app.LevelError {
			fg = termbox.ColorRed
		}
		printAt(0, 3, fg|termbox.AttrBold, def, msg.Text)
	}

	y := 5
	last := height - 2
	for _, l := range result {
		if y >= last {
			break
		}
		printAt(0, y, def, def, l)
		y++
	}
	if len(result) > 0 {
		y++
	}

	if y < last {
		printAt(0, y, def|termbox.AttrBold, def, "최근 스캔")
		y++
	}
	for i, l := range recent {
		if y >= last {
			break
		}
		fg := def
		if hasRecent && f == focusRecent && i == selected {
			fg = def | termbox.AttrReverse
		}
		printAt(0, y, fg, def, l)
		y++
	}

	printAt(0, height-1, termbox.ColorCyan, def, helpLine)
	if err := termbox.Flush(); err != nil {
		log.Error("Redraw failed: %v", err)
	}
}

// loop redraws and dispatches events until the user quits or ctx ends.
func (t *tui) loop() error {
	go func() {
		<-t.ctx.Done()
		termbox.Interrupt()
	}()
	for {
		t.draw()
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventKey:
			if t.handleKey(ev) {
				return nil
			}
		case termbox.EventError:
			return ev.Err
		case termbox.EventInterrupt:
			if t.ctx.Err() != nil {
				return nil
			}
		}
	}
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	if cfg.LogFile == "" {
		path := filepath.Join(os.TempDir(), "easyfilter.log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		defer f.Close()
		prev := log.Current()
		defer log.Configure(prev)
		log.Configure(log.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: f})
	}

	var clipboard app.Clipboard
	if c, err := app.NewCommandClipboard(); err == nil {
		clipboard = c
	} else {
		log.Warn("Copy disabled: %v", err)
	}

	if err := termbox.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)

	t := newTUI(ctx, func() { go termbox.Interrupt() })
	s, err := NewScanner(ctx, cfg, ui{notifier: t, display: t, renderer: t, clipboard: clipboard})
	if err != nil {
		termbox.Close()
		return err
	}
	t.app = s.app

	err = t.loop()
	if t.app.Scanning() {
		t.app.StopScan()
	}
	termbox.Close()
	s.Close()
	return err
}
