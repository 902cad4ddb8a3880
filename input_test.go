package driver

import (
	"errors"
	"io"
	"testing"

	"github.com/zelixir/scenic-driver-gg/event"
	"github.com/zelixir/scenic-driver-gg/script"
	"github.com/zelixir/scenic-driver-gg/wire"
)

func TestInputMaskGating(t *testing.T) {
	send := func(d *Driver) {
		d.Key(65, 38, 1, 0)
		d.Codepoint('A', 0)
		d.CursorPos(1, 2)
		d.MouseButton(0, 1, 0)
		d.Scroll(0, -1)
		d.CursorEnter(true)
		d.DropPaths([]string{"/tmp/a"})
		d.Reshape(10, 20)
	}
	all := []event.Kind{
		event.KindKey, event.KindCodepoint, event.KindCursorPos, event.KindMouseButton,
		event.KindScroll, event.KindCursorEnter, event.KindDropPaths, event.KindReshape,
	}

	tests := []struct {
		name string
		mask InputMask
		want []event.Kind
	}{
		{"default forwards all", InputAll, all},
		{"none", 0, nil},
		{"keys only", InputKey | InputCodepoint, []event.Kind{event.KindKey, event.KindCodepoint}},
		{"pointer", InputCursorPos | InputButton | InputScroll, []event.Kind{
			event.KindCursorPos, event.KindMouseButton, event.KindScroll,
		}},
		{"reshape", InputReshape, []event.Kind{event.KindReshape}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.d.Dispatch(cmd(CmdInputFlags).Uint32(uint32(tt.mask)).Bytes())
			send(f.d)

			evs := f.ev.Events()
			if len(evs) != len(tt.want) {
				t.Fatalf("events = %v, want kinds %v", evs, tt.want)
			}
			for i, ev := range evs {
				if ev.Kind() != tt.want[i] {
					t.Errorf("event[%d] kind = %v, want %v", i, ev.Kind(), tt.want[i])
				}
			}
		})
	}
}

func TestInputUsesCursorPosition(t *testing.T) {
	f := newFixture()
	f.win.SetCursorPosition(12.5, 30)
	f.d.MouseButton(1, 0, 2)
	f.d.Scroll(0.5, 1)
	f.d.CursorEnter(false)

	evs := f.ev.Events()
	if len(evs) != 3 {
		t.Fatalf("events = %v, want 3", evs)
	}
	if got, want := evs[0], (event.MouseButton{Button: 1, Action: 0, Mods: 2, X: 12.5, Y: 30}); got != want {
		t.Errorf("mouse button = %+v, want %+v", got, want)
	}
	if got, want := evs[1], (event.Scroll{DX: 0.5, DY: 1, X: 12.5, Y: 30}); got != want {
		t.Errorf("scroll = %+v, want %+v", got, want)
	}
	if got, want := evs[2], (event.CursorEnter{Entered: 0, X: 12.5, Y: 30}); got != want {
		t.Errorf("cursor enter = %+v, want %+v", got, want)
	}
}

func TestReshapeRequestsRedraw(t *testing.T) {
	f := newFixture()
	f.d.Dispatch(cmd(CmdInputFlags).Uint32(0).Bytes())
	f.d.Reshape(300, 200)
	if !f.d.RedrawPending() {
		t.Error("RedrawPending() = false after Reshape")
	}
	if evs := f.ev.Events(); len(evs) != 0 {
		t.Errorf("events = %v, want none with reshape masked", evs)
	}

	f.d.Dispatch(cmd(CmdInputFlags).Uint32(uint32(InputReshape)).Bytes())
	f.d.Reshape(300, 200)
	want := event.Reshape{Width: 300, Height: 200, FrameWidth: 300, FrameHeight: 200}
	if evs := f.ev.Events(); len(evs) != 1 || evs[0] != want {
		t.Errorf("events = %v, want [%+v]", evs, want)
	}
}

func TestCloseIgnoresMask(t *testing.T) {
	f := newFixture()
	f.d.Dispatch(cmd(CmdInputFlags).Uint32(0).Bytes())
	f.d.Close()
	if got := len(f.ev.OfKind(event.KindClose)); got != 1 {
		t.Errorf("close events = %d, want 1", got)
	}
}

func TestNoInputAfterStop(t *testing.T) {
	f := newFixture()
	f.d.Dispatch(cmd(CmdQuit).Bytes())
	f.d.Key(1, 1, 1, 0)
	f.d.Close()
	if evs := f.ev.Events(); len(evs) != 0 {
		t.Errorf("events = %v, want none after quit", evs)
	}
}

func TestDropPathsEmpty(t *testing.T) {
	f := newFixture()
	f.d.DropPaths(nil)
	if evs := f.ev.Events(); len(evs) != 0 {
		t.Errorf("events = %v, want none", evs)
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"kind only", &Error{Kind: KindTransport}, "driver: transport"},
		{"op", &Error{Kind: KindDecode, Op: "set_root"}, "driver: decode in set_root"},
		{"full", &Error{Kind: KindBackend, Op: "load_font_blob", Detail: "roboto", Err: io.EOF},
			"driver: backend in load_font_blob: roboto: EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	truncated := func() error {
		_, err := wire.NewDecoder(nil).Uint32()
		return err
	}
	badUTF8 := func() error {
		_, err := wire.NewDecoder([]byte{0xFF, 0xFE}).String(2)
		return err
	}
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"truncated", truncated(), KindDecode},
		{"utf8", badUTF8(), KindDecode},
		{"depth", &script.Error{Err: script.ErrDepth}, KindDepth},
		{"budget", &script.Error{Err: script.ErrOpBudget}, KindDecode},
		{"unknown opcode", &script.Error{Err: script.ErrUnknownOpcode}, KindUnknownOpcode},
		{"other", errors.New("gpu lost"), KindBackend},
		{"already classified", &Error{Kind: KindResourceMiss}, KindResourceMiss},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			if got.Kind != tt.want {
				t.Errorf("classify() kind = %v, want %v", got.Kind, tt.want)
			}
			if !errors.Is(got, &Error{Kind: tt.want}) {
				t.Errorf("errors.Is(%v, kind %v) = false", got, tt.want)
			}
		})
	}
}
