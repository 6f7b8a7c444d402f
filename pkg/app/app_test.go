package app

import (
	"context"
	"errors"
	"image"
	"testing"

	"easyfilter/pkg/catalog"
	"easyfilter/pkg/decode"
	"easyfilter/pkg/hardware"
	"easyfilter/pkg/history"
	"easyfilter/pkg/kvstore"
	"easyfilter/pkg/session"
)

type fakeDecoder map[image.Image]string

func (d fakeDecoder) Decode(img image.Image) (string, error) {
	if s, ok := d[img]; ok {
		return s, nil
	}
	return "", decode.ErrNoCode
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type harness struct {
	app       *App
	camera    *hardware.Core
	decoder   fakeDecoder
	clipboard *fakeClipboard
	messages  []Message
	shown     []*catalog.Classification
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		camera:    hardware.NewCore(),
		decoder:   fakeDecoder{},
		clipboard: &fakeClipboard{},
	}
	hist := history.New(kvstore.NewMemory())
	hist.Load(context.Background())
	h.app = New(Deps{
		History:   hist,
		Camera:    h.camera,
		Decoder:   h.decoder,
		Clipboard: h.clipboard,
		Notifier:  NotifierFunc(func(m Message) { h.messages = append(h.messages, m) }),
		Display:   DisplayFunc(func(r *catalog.Classification) { h.shown = append(h.shown, r) }),
	})
	return h
}

func (h *harness) lastMessage() Message {
	if len(h.messages) == 0 {
		return Message{}
	}
	return h.messages[len(h.messages)-1]
}

func TestScanFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	short, good := image.NewGray(image.Rect(0, 0, 1, 1)), image.NewGray(image.Rect(0, 0, 1, 1))
	h.decoder[short] = "12"
	h.decoder[good] = "8809591517872"
	h.camera.Push(short, good)

	res, err := h.app.Scan(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != catalog.KindKnown || res.Record.Code != "8809591517872" {
		t.Errorf("unexpected result: %+v", res)
	}
	if h.app.Scanning() {
		t.Error("camera should be off after a successful scan")
	}
	if h.messages[0].Text != MsgCameraOn {
		t.Errorf("first message = %q", h.messages[0].Text)
	}
	var sawInvalid bool
	for _, m := range h.messages {
		if m.Text == MsgInvalidScan && m.Level == LevelError {
			sawInvalid = true
		}
	}
	if !sawInvalid {
		t.Error("expected an invalid-barcode message for the short code")
	}
	if got := h.lastMessage().Text; got != "바코드 8809591517872가 성공적으로 스캔되어 자동 검색되었습니다." {
		t.Errorf("last message = %q", got)
	}
	if recs := h.app.History(); len(recs) != 1 || recs[0].Barcode != "8809591517872" {
		t.Errorf("history = %+v", recs)
	}
	if h.app.Current() != "8809591517872" {
		t.Errorf("current = %s", h.app.Current())
	}
}

func TestStartScanCameraError(t *testing.T) {
	h := newHarness(t)
	h.camera.OpenErr = errors.New("NotAllowedError")

	err := h.app.StartScan(context.Background())
	if !errors.Is(err, session.ErrCaptureUnavailable) {
		t.Fatalf("expected ErrCaptureUnavailable, got %v", err)
	}
	if m := h.lastMessage(); m.Text != MsgCameraError || m.Level != LevelError {
		t.Errorf("message = %+v", m)
	}
	if h.app.Scanning() {
		t.Error("app should be idle")
	}
}

func TestStopScan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.app.StartScan(ctx); err != nil {
		t.Fatal(err)
	}
	h.app.StopScan()

	if _, err := h.app.RunScan(ctx); !errors.Is(err, session.ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
	if h.lastMessage().Text != MsgScanStopped {
		t.Errorf("message = %q", h.lastMessage().Text)
	}
	if _, closes, open := h.camera.Stats(); closes != 1 || open {
		t.Errorf("camera not released: closes=%d open=%v", closes, open)
	}
}

func TestSearchManual(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
		wantLen int
	}{
		{"empty", "   ", ErrEmptyInput, MsgEnterBarcode, 0},
		{"too short", "1234-567", catalog.ErrInvalidBarcode, MsgInvalidManual, 0},
		{"valid heuristic", " 8801234567890 ", nil, "", 1},
		{"valid known", "8809841630962", nil, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			res, err := h.app.SearchManual(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if h.lastMessage().Text != tt.wantMsg {
					t.Errorf("message = %q, want %q", h.lastMessage().Text, tt.wantMsg)
				}
			} else if err != nil || res == nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(h.app.History()); got != tt.wantLen {
				t.Errorf("history length = %d, want %d", got, tt.wantLen)
			}
		})
	}
}

func TestSelectRecentLeavesHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.app.SearchManual(ctx, "8809591513836")
	h.app.SearchManual(ctx, "8809591519135")

	before := h.app.History()
	res, err := h.app.SelectRecent("8809591513836")
	if err != nil {
		t.Fatal(err)
	}
	if res.Record.Variants[0].PartNumber != "Z0420-0210U0" {
		t.Errorf("unexpected record: %+v", res.Record)
	}
	after := h.app.History()
	if before[0].Barcode != after[0].Barcode || len(before) != len(after) {
		t.Errorf("history changed: %v -> %v", before, after)
	}
	if len(h.shown) != 3 {
		t.Errorf("expected 3 results shown, got %d", len(h.shown))
	}
}

func TestCopyBarcode(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing shown", func(t *testing.T) {
		h := newHarness(t)
		if err := h.app.CopyBarcode(ctx); !errors.Is(err, ErrClipboardUnavailable) {
			t.Errorf("expected ErrClipboardUnavailable, got %v", err)
		}
	})

	t.Run("copies current barcode", func(t *testing.T) {
		h := newHarness(t)
		h.app.SearchManual(ctx, "96385074")
		if err := h.app.CopyBarcode(ctx); err != nil {
			t.Fatal(err)
		}
		if h.clipboard.text != "96385074" {
			t.Errorf("clipboard = %q", h.clipboard.text)
		}
		if h.lastMessage().Text != MsgCopied {
			t.Errorf("message = %q", h.lastMessage().Text)
		}
	})

	t.Run("clipboard failure", func(t *testing.T) {
		h := newHarness(t)
		h.clipboard.err = errors.New("denied")
		h.app.SearchManual(ctx, "96385074")
		err := h.app.CopyBarcode(ctx)
		if !errors.Is(err, ErrClipboardUnavailable) {
			t.Errorf("expected ErrClipboardUnavailable, got %v", err)
		}
		if m := h.lastMessage(); m.Text != MsgCopyFailed || m.Level != LevelError {
			t.Errorf("message = %+v", m)
		}
	})
}

func TestProcessBarcodeInvalid(t *testing.T) {
	h := newHarness(t)
	_, err := h.app.ProcessBarcode(context.Background(), "ABC-123")
	if !errors.Is(err, catalog.ErrInvalidBarcode) {
		t.Errorf("expected ErrInvalidBarcode, got %v", err)
	}
	if len(h.app.History()) != 0 || len(h.shown) != 0 {
		t.Error("invalid barcode must not change state")
	}
}
